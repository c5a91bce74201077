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

// Package profile defines the read-only profile snapshot used by the chatbot
// pipeline and the completeness evaluation over its fixed field checklist.
package profile

import "math"

// Risk appetite values stored on a profile
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// TrackedFieldCount is the fixed number of fields the completeness
// checklist covers: name, age, income, financialGoals, demographicInfo,
// location, occupation, psychologicalProfile.
const TrackedFieldCount = 8

// Demographic holds onboarding demographic answers.
type Demographic struct {
	Location   string `json:"location,omitempty"`
	Occupation string `json:"occupation,omitempty"`
}

// Psychological holds onboarding psychological answers.
type Psychological struct {
	RiskTolerance       string `json:"risk_tolerance,omitempty"`
	FinancialAnxiety    string `json:"financial_anxiety,omitempty"`
	DecisionMakingStyle string `json:"decision_making_style,omitempty"`
}

// Onboarding groups the optional onboarding sections. A nil section means
// the user never completed that part of onboarding.
type Onboarding struct {
	Demographic   *Demographic   `json:"demographic,omitempty"`
	Psychological *Psychological `json:"psychological,omitempty"`
}

// ProfileSnapshot is a read-only view of a user profile at query time.
// Zero values mean "not provided"; the pipeline never mutates it.
type ProfileSnapshot struct {
	UserID       string      `json:"user_id"`
	Name         string      `json:"name,omitempty"`
	Age          int         `json:"age,omitempty"`
	Income       int64       `json:"income,omitempty"`
	RiskAppetite string      `json:"risk_appetite,omitempty"`
	Goals        []string    `json:"goals,omitempty"`
	Onboarding   *Onboarding `json:"onboarding,omitempty"`
}

// CompletenessVerdict is the result of checking the fixed field checklist.
type CompletenessVerdict struct {
	Complete             bool     `json:"complete"`
	MissingFields        []string `json:"missing_fields"`
	CompletionPercentage int      `json:"completion_percentage"`
}

// Evaluate checks the snapshot against the fixed 8-field checklist and
// returns a fresh verdict. A nil profile reports a single "profile" entry.
// The demographic section contributes up to three entries: one when the
// whole section is absent, otherwise one each for location and occupation.
func Evaluate(p *ProfileSnapshot) CompletenessVerdict {
	if p == nil {
		return CompletenessVerdict{
			Complete:             false,
			MissingFields:        []string{"profile"},
			CompletionPercentage: 0,
		}
	}

	var missing []string

	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Age == 0 {
		missing = append(missing, "age")
	}
	if p.Income == 0 {
		missing = append(missing, "income")
	}
	if len(p.Goals) == 0 {
		missing = append(missing, "financialGoals")
	}

	if p.Onboarding == nil || p.Onboarding.Demographic == nil {
		missing = append(missing, "demographicInfo")
	} else {
		if p.Onboarding.Demographic.Location == "" {
			missing = append(missing, "location")
		}
		if p.Onboarding.Demographic.Occupation == "" {
			missing = append(missing, "occupation")
		}
	}

	if p.Onboarding == nil || p.Onboarding.Psychological == nil {
		missing = append(missing, "psychologicalProfile")
	}

	return CompletenessVerdict{
		Complete:             len(missing) == 0,
		MissingFields:        missing,
		CompletionPercentage: completionPercentage(len(missing)),
	}
}

// completionPercentage computes round(100 - missing/8*100).
func completionPercentage(missing int) int {
	return int(math.Round(100 - float64(missing)/float64(TrackedFieldCount)*100))
}

// Location returns the demographic location or "".
func (p *ProfileSnapshot) Location() string {
	if p == nil || p.Onboarding == nil || p.Onboarding.Demographic == nil {
		return ""
	}
	return p.Onboarding.Demographic.Location
}

// Occupation returns the demographic occupation or "".
func (p *ProfileSnapshot) Occupation() string {
	if p == nil || p.Onboarding == nil || p.Onboarding.Demographic == nil {
		return ""
	}
	return p.Onboarding.Demographic.Occupation
}

// Psychology returns the psychological section or nil.
func (p *ProfileSnapshot) Psychology() *Psychological {
	if p == nil || p.Onboarding == nil {
		return nil
	}
	return p.Onboarding.Psychological
}
