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

package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long a reset code stays valid.
const DefaultTTL = 15 * time.Minute

// Service issues 6-digit reset codes keyed by email.
type Service struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewService builds a service over the given store. A non-positive ttl
// falls back to DefaultTTL.
func NewService(store Store, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, ttl: ttl, logger: logger}
}

// Issue generates a fresh 6-digit code for the email, replacing any
// outstanding one.
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	if err := s.store.Set(ctx, key(email), code, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	s.logger.Info("OTP issued",
		zap.String("email", email),
		zap.Duration("ttl", s.ttl),
	)
	return code, nil
}

// Verify reports whether the code matches the outstanding one for the
// email. It does not consume the code; callers consume after the reset
// completes.
func (s *Service) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.store.Get(ctx, key(email))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load code: %w", err)
	}
	return stored == code, nil
}

// Consume removes the outstanding code for the email.
func (s *Service) Consume(ctx context.Context, email string) error {
	return s.store.Delete(ctx, key(email))
}

func key(email string) string {
	return "otp:" + email
}

// generateCode returns a uniformly random 6-digit numeric string.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
