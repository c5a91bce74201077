package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/niveshpath/backend/internal/profile"
)

// UpsertProfile writes the full profile row for a user. Nil onboarding
// sections are recorded as absent so GetProfile can rebuild them as nil.
func (s *Store) UpsertProfile(ctx context.Context, p *profile.ProfileSnapshot) error {
	if p == nil || p.UserID == "" {
		return fmt.Errorf("profile with user ID is required")
	}

	goals, err := json.Marshal(p.Goals)
	if err != nil {
		return fmt.Errorf("failed to encode goals: %w", err)
	}

	var (
		hasDemographic, hasPsychological   bool
		location, occupation               string
		riskTolerance, anxiety, decisionBy string
	)
	if p.Onboarding != nil {
		if d := p.Onboarding.Demographic; d != nil {
			hasDemographic = true
			location = d.Location
			occupation = d.Occupation
		}
		if psy := p.Onboarding.Psychological; psy != nil {
			hasPsychological = true
			riskTolerance = psy.RiskTolerance
			anxiety = psy.FinancialAnxiety
			decisionBy = psy.DecisionMakingStyle
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, name, age, income, risk_appetite, goals,
			has_demographic, location, occupation,
			has_psychological, risk_tolerance, financial_anxiety, decision_style,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			income = excluded.income,
			risk_appetite = excluded.risk_appetite,
			goals = excluded.goals,
			has_demographic = excluded.has_demographic,
			location = excluded.location,
			occupation = excluded.occupation,
			has_psychological = excluded.has_psychological,
			risk_tolerance = excluded.risk_tolerance,
			financial_anxiety = excluded.financial_anxiety,
			decision_style = excluded.decision_style,
			updated_at = excluded.updated_at`,
		p.UserID, p.Name, p.Age, p.Income, p.RiskAppetite, string(goals),
		hasDemographic, location, occupation,
		hasPsychological, riskTolerance, anxiety, decisionBy,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// GetProfile loads a user's profile snapshot. Returns (nil, nil) when the
// user has no profile row; the completeness evaluator treats that as a
// fully missing profile.
func (s *Store) GetProfile(ctx context.Context, userID string) (*profile.ProfileSnapshot, error) {
	var (
		p                                  profile.ProfileSnapshot
		goalsJSON                          string
		hasDemographic, hasPsychological   bool
		location, occupation               string
		riskTolerance, anxiety, decisionBy string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, age, income, risk_appetite, goals,
			has_demographic, location, occupation,
			has_psychological, risk_tolerance, financial_anxiety, decision_style
		FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Name, &p.Age, &p.Income, &p.RiskAppetite, &goalsJSON,
			&hasDemographic, &location, &occupation,
			&hasPsychological, &riskTolerance, &anxiety, &decisionBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	if err := json.Unmarshal([]byte(goalsJSON), &p.Goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}

	if hasDemographic || hasPsychological {
		p.Onboarding = &profile.Onboarding{}
		if hasDemographic {
			p.Onboarding.Demographic = &profile.Demographic{
				Location:   location,
				Occupation: occupation,
			}
		}
		if hasPsychological {
			p.Onboarding.Psychological = &profile.Psychological{
				RiskTolerance:       riskTolerance,
				FinancialAnxiety:    anxiety,
				DecisionMakingStyle: decisionBy,
			}
		}
	}
	return &p, nil
}
