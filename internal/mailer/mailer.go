// Copyright 2025 NiveshPath Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mailer delivers password-reset codes by email.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Sender delivers a reset code to an address.
type Sender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// SMTPSender sends reset mail over SMTP with PLAIN auth.
type SMTPSender struct {
	addr   string
	auth   smtp.Auth
	from   string
	logger *zap.Logger
}

// NewSMTPSender builds a sender for the given SMTP server.
func NewSMTPSender(host string, port int, username, password, from string, logger *zap.Logger) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr:   fmt.Sprintf("%s:%d", host, port),
		auth:   auth,
		from:   from,
		logger: logger,
	}
}

// SendOTP mails the reset code.
func (s *SMTPSender) SendOTP(_ context.Context, email, code string) error {
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: NiveshPath Password Reset\r\n\r\n"+
		"Your password reset code is %s. It expires in 15 minutes.\r\n"+
		"If you did not request a reset, you can ignore this message.\r\n",
		s.from, email, code)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{email}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}

	s.logger.Info("Reset mail sent", zap.String("email", email))
	return nil
}

// LogSender logs the code instead of mailing it. Used in development when
// no SMTP host is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a development sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendOTP logs the code.
func (l *LogSender) SendOTP(_ context.Context, email, code string) error {
	l.logger.Info("Reset code issued (development mode, not mailed)",
		zap.String("email", email),
		zap.String("code", code),
	)
	return nil
}
