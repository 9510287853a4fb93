package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (s *ErrorTestSuite) TestNewGameError() {
	// Setup
	code := ErrInvalidBet
	message := "bet exceeds balance"

	// Execute
	err := NewGameError(code, message)

	// Assert
	s.Equal(code, err.Code, "Error code should match")
	s.Equal(message, err.Message, "Error message should match")
	s.Nil(err.Err, "Underlying error should be nil")
}

func (s *ErrorTestSuite) TestWrapError() {
	// Setup
	underlying := errors.New("connection failed")

	// Execute
	err := WrapError(ErrDatabaseError, "could not save wallet", underlying)

	// Assert
	s.Equal(ErrDatabaseError, err.Code)
	s.Equal("could not save wallet", err.Message)
	s.Equal(underlying, err.Err)
	s.ErrorIs(err, underlying, "Unwrap should expose the underlying error")
}

func (s *ErrorTestSuite) TestErrorString() {
	testCases := []struct {
		name     string
		err      *GameError
		expected string
	}{
		{
			name:     "Simple error",
			err:      NewGameError(ErrInvalidPhase, "round is over"),
			expected: "INVALID_PHASE: round is over",
		},
		{
			name:     "Wrapped error",
			err:      WrapError(ErrEmptyDeck, "cannot deal", errors.New("deck is empty")),
			expected: "EMPTY_DECK: cannot deal (deck is empty)",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, tc.err.Error(), "Error string should match expected format")
		})
	}
}

func (s *ErrorTestSuite) TestIsGameError() {
	gameErr := NewGameError(ErrInvalidAction, "unknown action")

	testCases := []struct {
		name     string
		err      error
		code     ErrorCode
		expected bool
	}{
		{"matching code", gameErr, ErrInvalidAction, true},
		{"different code", gameErr, ErrInvalidBet, false},
		{"wrapped with fmt", fmt.Errorf("handler: %w", gameErr), ErrInvalidAction, true},
		{"regular error", errors.New("regular error"), ErrInvalidAction, false},
		{"nil error", nil, ErrInvalidAction, false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, IsGameError(tc.err, tc.code))
		})
	}
}

func (s *ErrorTestSuite) TestAs() {
	var target *GameError

	s.False(As(errors.New("plain"), &target))
	s.Nil(target)

	s.False(As(NewGameError(ErrInvalidBet, "x"), nil), "nil target should not panic")

	s.True(As(fmt.Errorf("outer: %w", NewGameError(ErrInvalidBet, "too big")), &target))
	s.Equal(ErrInvalidBet, target.Code)
}

func (s *ErrorTestSuite) TestCodeOf() {
	s.Equal(ErrInvalidPhase, CodeOf(NewGameError(ErrInvalidPhase, "x")))
	s.Equal(ErrInternalError, CodeOf(errors.New("boom")))
}
