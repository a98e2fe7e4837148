package notes

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// fieldKind is the expected shape of a known section value.
type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindNumber
	kindList
	kindMap
)

func (k fieldKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindBool:
		return "boolean"
	case kindNumber:
		return "number"
	case kindList:
		return "list"
	case kindMap:
		return "object"
	}
	return "unknown"
}

// sectionSchemas lists the known section keys per note type and the value
// shape each must have when present. Keys not listed here pass through
// untouched; validation is structural only.
var sectionSchemas = map[NoteType]map[string]fieldKind{
	TypeIntake: {
		"presentingProblem":    kindString,
		"historyOfProblem":     kindString,
		"psychiatricHistory":   kindString,
		"medicalHistory":       kindString,
		"familyHistory":        kindString,
		"socialHistory":        kindString,
		"substanceUse":         kindString,
		"mentalStatusExam":     kindMap,
		"diagnosisImpression":  kindString,
		"initialPlan":          kindString,
	},
	TypeProgressNote: {
		"sessionDate":        kindString,
		"sessionTime":        kindString,
		"sessionDuration":    kindNumber,
		"serviceCode":        kindString,
		"primaryDiagnosis":   kindString,
		"secondaryDiagnosis": kindString,
		"mood":               kindString,
		"affect":             kindString,
		"noRiskPresent":      kindBool,
		"riskAreas":          kindList,
		"symptomDescription": kindString,
		"objectiveContent":   kindString,
		"interventions":      kindList,
		"planContent":        kindString,
		"recommendation":     kindString,
	},
	TypeTreatmentPlan: {
		"presentingProblem": kindString,
		"goals":             kindList,
		"objectives":        kindList,
		"interventions":     kindList,
		"frequency":         kindString,
		"reviewDate":        kindString,
	},
	TypeContactNote: {
		"contactDate":    kindString,
		"contactMethod":  kindString,
		"contactSummary": kindString,
	},
	TypeConsultation: {
		"consultationDate": kindString,
		"consultant":       kindString,
		"reason":           kindString,
		"findings":         kindString,
		"recommendation":   kindString,
	},
	TypeCancellation: {
		"sessionDate":  kindString,
		"cancelledBy":  kindString,
		"reason":       kindString,
		"followUpPlan": kindString,
	},
	TypeMiscellaneous: {
		"noteBody": kindString,
	},
}

func hasKind(value interface{}, kind fieldKind) bool {
	switch kind {
	case kindString:
		_, ok := value.(string)
		return ok
	case kindBool:
		_, ok := value.(bool)
		return ok
	case kindNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case kindList:
		_, ok := value.([]interface{})
		return ok
	case kindMap:
		_, ok := value.(map[string]interface{})
		return ok
	}
	return false
}

func kindRule(kind fieldKind) validation.RuleFunc {
	return func(value interface{}) error {
		if value == nil {
			return nil
		}
		if !hasKind(value, kind) {
			return fmt.Errorf("must be a %s", kind)
		}
		return nil
	}
}

// ValidateContent checks known section values against the type's schema.
// Unknown keys are ignored; nil values are allowed (a section can be
// explicitly cleared in a draft).
func ValidateContent(t NoteType, c Content) error {
	schema := sectionSchemas[t]
	var fields []FieldError
	for key, value := range c {
		kind, known := schema[key]
		if !known {
			continue
		}
		if err := validation.Validate(value, validation.By(kindRule(kind))); err != nil {
			fields = append(fields, FieldError{Key: key, Message: fmt.Sprintf("%s %s", key, err)})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
