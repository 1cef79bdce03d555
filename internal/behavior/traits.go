package behavior

import "fmt"

const (
	TraitLegalAggression         = "legal_aggression"
	TraitControlSeeking          = "control_seeking"
	TraitEvidenceDismissal       = "evidence_dismissal"
	TraitVulnerabilityToPressure = "vulnerability_to_pressure"
	TraitEthicalCompliance       = "ethical_compliance"
)

// Traits are the five bounded behavioral dimensions of a profile. Every
// value lies in [0,1] once it has passed through Clamped.
type Traits struct {
	LegalAggression         float64 `json:"legal_aggression" yaml:"legal_aggression"`
	ControlSeeking          float64 `json:"control_seeking" yaml:"control_seeking"`
	EvidenceDismissal       float64 `json:"evidence_dismissal" yaml:"evidence_dismissal"`
	VulnerabilityToPressure float64 `json:"vulnerability_to_pressure" yaml:"vulnerability_to_pressure"`
	EthicalCompliance       float64 `json:"ethical_compliance" yaml:"ethical_compliance"`
}

func DefaultTraits() Traits {
	return Traits{
		LegalAggression:         0.5,
		ControlSeeking:          0.5,
		EvidenceDismissal:       0.5,
		VulnerabilityToPressure: 0.5,
		EthicalCompliance:       0.5,
	}
}

func (t Traits) Clamped() Traits {
	return Traits{
		LegalAggression:         Clamp(t.LegalAggression),
		ControlSeeking:          Clamp(t.ControlSeeking),
		EvidenceDismissal:       Clamp(t.EvidenceDismissal),
		VulnerabilityToPressure: Clamp(t.VulnerabilityToPressure),
		EthicalCompliance:       Clamp(t.EthicalCompliance),
	}
}

// Value looks a trait up by its snake_case name.
func (t Traits) Value(name string) (float64, error) {
	switch name {
	case TraitLegalAggression:
		return t.LegalAggression, nil
	case TraitControlSeeking:
		return t.ControlSeeking, nil
	case TraitEvidenceDismissal:
		return t.EvidenceDismissal, nil
	case TraitVulnerabilityToPressure:
		return t.VulnerabilityToPressure, nil
	case TraitEthicalCompliance:
		return t.EthicalCompliance, nil
	default:
		return 0, fmt.Errorf("unknown trait: %s", name)
	}
}

// Set assigns a trait by its snake_case name. The value is not clamped.
func (t *Traits) Set(name string, value float64) error {
	switch name {
	case TraitLegalAggression:
		t.LegalAggression = value
	case TraitControlSeeking:
		t.ControlSeeking = value
	case TraitEvidenceDismissal:
		t.EvidenceDismissal = value
	case TraitVulnerabilityToPressure:
		t.VulnerabilityToPressure = value
	case TraitEthicalCompliance:
		t.EthicalCompliance = value
	default:
		return fmt.Errorf("unknown trait: %s", name)
	}
	return nil
}

func IsTrait(name string) bool {
	_, err := Traits{}.Value(name)
	return err == nil
}

func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
