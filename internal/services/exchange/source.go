package exchange

import (
	"bufio"
	"context"
	"io"
	"strings"

	"otprelay/internal/domain"
)

// StaticOTP is an OTPSource that always yields itself.
type StaticOTP string

func (s StaticOTP) OTP(context.Context) (string, error) { return string(s), nil }

// ReaderOTP yields the first line read from R, trimmed of whitespace.
type ReaderOTP struct {
	R io.Reader
}

func (s ReaderOTP) OTP(context.Context) (string, error) {
	line, err := bufio.NewReader(s.R).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	otp := strings.TrimSpace(line)
	if otp == "" {
		return "", ErrEmptyOTP
	}
	return otp, nil
}

var (
	_ domain.OTPSource = StaticOTP("")
	_ domain.OTPSource = ReaderOTP{}
)
