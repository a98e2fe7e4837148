package notes

// finalizationRule is one mandatory-field requirement gating submit and sign.
// A nil Check means plain presence of Key.
type finalizationRule struct {
	Key   string
	Label string
	Check func(c Content) bool
}

// present reports whether the section has a usable value: non-nil, and
// non-empty for strings, lists and objects.
func present(c Content, key string) bool {
	value, ok := c[key]
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return v != ""
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	}
	return true
}

func required(key, label string) finalizationRule {
	return finalizationRule{Key: key, Label: label}
}

// finalizationRules holds the per-type mandatory fields. A note cannot be
// submitted for review or signed while any of these fail.
var finalizationRules = map[NoteType][]finalizationRule{
	TypeIntake: {
		required("presentingProblem", "Presenting problem"),
		required("psychiatricHistory", "Psychiatric history"),
		required("mentalStatusExam", "Mental status exam"),
		required("diagnosisImpression", "Diagnostic impression"),
		required("initialPlan", "Initial plan"),
	},
	TypeProgressNote: {
		required("sessionDate", "Session date"),
		required("sessionTime", "Session time"),
		required("serviceCode", "Service code"),
		required("primaryDiagnosis", "Primary diagnosis"),
		required("mood", "Mood"),
		required("affect", "Affect"),
		{
			// Either an explicit no-risk attestation or at least one
			// identified risk area must be recorded.
			Key:   "riskAreas",
			Label: "Risk assessment",
			Check: func(c Content) bool {
				if noRisk, ok := c["noRiskPresent"].(bool); ok && noRisk {
					return true
				}
				return present(c, "riskAreas")
			},
		},
		required("symptomDescription", "Symptom description"),
		required("objectiveContent", "Objective content"),
		required("interventions", "Interventions"),
		required("planContent", "Plan"),
		required("recommendation", "Recommendation"),
	},
	TypeTreatmentPlan: {
		required("presentingProblem", "Presenting problem"),
		required("goals", "Goals"),
		required("objectives", "Objectives"),
		required("interventions", "Interventions"),
		required("frequency", "Frequency"),
		required("reviewDate", "Review date"),
	},
	TypeContactNote: {
		required("contactDate", "Contact date"),
		required("contactMethod", "Contact method"),
		required("contactSummary", "Contact summary"),
	},
	TypeConsultation: {
		required("consultationDate", "Consultation date"),
		required("consultant", "Consultant"),
		required("reason", "Reason for consultation"),
		required("findings", "Findings"),
	},
	TypeCancellation: {
		required("sessionDate", "Session date"),
		required("cancelledBy", "Cancelled by"),
		required("reason", "Cancellation reason"),
	},
	TypeMiscellaneous: {
		required("noteBody", "Note body"),
	},
}

// MissingFields returns every finalization rule the content fails, in rule
// order. An empty result means the note may be submitted or signed.
func MissingFields(t NoteType, c Content) []FieldError {
	var missing []FieldError
	for _, rule := range finalizationRules[t] {
		ok := false
		if rule.Check != nil {
			ok = rule.Check(c)
		} else {
			ok = present(c, rule.Key)
		}
		if !ok {
			missing = append(missing, FieldError{Key: rule.Key, Message: rule.Label + " is required"})
		}
	}
	return missing
}

// CheckFinalizable wraps MissingFields into the error the lifecycle service
// returns from submit and sign.
func CheckFinalizable(t NoteType, c Content) error {
	if missing := MissingFields(t, c); len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
