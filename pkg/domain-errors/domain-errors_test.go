package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorMessage() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeValidation, Message: "unknown breakdown column"}
		s.Equal("unknown breakdown column", err.Error())
	})

	s.Run("falls back to code", func() {
		err := &Error{Code: CodeInternal}
		s.Equal("internal_error", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.Run("same code different message", func() {
		a := &Error{Code: CodeValidation, Message: "a"}
		b := &Error{Code: CodeValidation, Message: "b"}
		s.True(errors.Is(a, b))
	})

	s.Run("different code", func() {
		s.False(errors.Is(&Error{Code: CodeValidation}, &Error{Code: CodeInternal}))
	})

	s.Run("non-domain target", func() {
		s.False((&Error{Code: CodeNotFound}).Is(errors.New("not_found")))
	})

	s.Run("through fmt wrapping", func() {
		err := fmt.Errorf("query residents: %w", New(CodeTimeout, "deadline"))
		s.True(errors.Is(err, &Error{Code: CodeTimeout}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps existing domain code", func() {
		wrapped := Wrap(CodeInternal, "breakdown failed", New(CodeValidation, "bad column"))
		s.True(HasCode(wrapped, CodeValidation))
		s.Equal("breakdown failed", wrapped.Error())
	})

	s.Run("applies code to plain errors and keeps the cause", func() {
		cause := errors.New("connection refused")
		wrapped := Wrap(CodeInternal, "failed to query residents", cause)
		s.True(HasCode(wrapped, CodeInternal))
		s.ErrorIs(wrapped, cause)
		s.Equal("failed to query residents", wrapped.Error())
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeInternal))
	s.False(HasCode(errors.New("plain"), CodeInternal))
	s.True(HasCode(New(CodeBadRequest, "bad form"), CodeBadRequest))
}
