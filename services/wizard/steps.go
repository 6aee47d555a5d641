package wizard

import "estuary/models"

type StepID string

const (
	StepType             StepID = "type"
	StepBasicInfo        StepID = "basic_info"
	StepDelivery         StepID = "delivery"
	StepSessionsSchedule StepID = "sessions_schedule"
	StepBundleConfig     StepID = "bundle_config"
	StepSessionSelection StepID = "session_selection"
	StepPricing          StepID = "pricing"
	StepPolish           StepID = "polish"
)

// Step is one wizard screen and the check that gates leaving it.
type Step struct {
	ID       StepID
	Title    string
	Validate func(d *models.ServiceDraft) map[string]string
}

var (
	typeStep             = Step{StepType, "Choose a service type", validateType}
	basicInfoStep        = Step{StepBasicInfo, "Basic information", validateBasicInfo}
	deliveryStep         = Step{StepDelivery, "Delivery details", validateDelivery}
	sessionsScheduleStep = Step{StepSessionsSchedule, "Sessions schedule", validateSchedule}
	bundleConfigStep     = Step{StepBundleConfig, "Bundle configuration", validateBundleConfig}
	sessionSelectionStep = Step{StepSessionSelection, "Select sessions", validateSessionSelection}
	pricingStep          = Step{StepPricing, "Package pricing", validatePackagePricing}
	polishStep           = Step{StepPolish, "Polish and publish", validatePolish}
)

var stepGraph = map[models.ServiceType][]Step{
	models.ServiceTypeSession:  {typeStep, basicInfoStep, deliveryStep, polishStep},
	models.ServiceTypeWorkshop: {typeStep, basicInfoStep, deliveryStep, sessionsScheduleStep, polishStep},
	models.ServiceTypeCourse:   {typeStep, basicInfoStep, deliveryStep, sessionsScheduleStep, polishStep},
	models.ServiceTypeBundle:   {typeStep, bundleConfigStep, basicInfoStep, deliveryStep, polishStep},
	models.ServiceTypePackage:  {typeStep, sessionSelectionStep, pricingStep, basicInfoStep, polishStep},
}

// ResolveSteps returns the ordered steps for a service type. An unset or
// unknown type only has the type selection step.
func ResolveSteps(t models.ServiceType) []Step {
	if steps, ok := stepGraph[t]; ok {
		return steps
	}
	return []Step{typeStep}
}

func TotalPhases(t models.ServiceType) int {
	return len(ResolveSteps(t))
}

// StepAt maps a 1-based phase onto its step.
func StepAt(t models.ServiceType, phase int) (Step, bool) {
	steps := ResolveSteps(t)
	if phase < 1 || phase > len(steps) {
		return Step{}, false
	}
	return steps[phase-1], true
}

// PhaseOf finds the 1-based phase of a step, or 0 if the type has no such step.
func PhaseOf(t models.ServiceType, id StepID) int {
	for i, s := range ResolveSteps(t) {
		if s.ID == id {
			return i + 1
		}
	}
	return 0
}

// Validate runs the validator of one phase. It never mutates the draft.
func Validate(phase int, t models.ServiceType, d *models.ServiceDraft) (bool, map[string]string) {
	step, ok := StepAt(t, phase)
	if !ok {
		return false, map[string]string{"phase": ErrInvalidPhase.Error()}
	}
	errs := step.Validate(d)
	return len(errs) == 0, errs
}

// StepInfo is the client view of one step.
type StepInfo struct {
	Phase   int    `json:"phase"`
	ID      StepID `json:"id"`
	Title   string `json:"title"`
	Reached bool   `json:"reached"`
	Current bool   `json:"current"`
}

type StepsView struct {
	ServiceType     models.ServiceType `json:"serviceType"`
	TotalPhases     int                `json:"totalPhases"`
	CurrentPhase    int                `json:"currentPhase"`
	MaxReachedPhase int                `json:"maxReachedPhase"`
	Steps           []StepInfo         `json:"steps"`
}

// StepsOf describes the resolved step graph and the session's progress through it.
func StepsOf(s *models.WizardSession) StepsView {
	steps := ResolveSteps(s.Draft.ServiceType)
	view := StepsView{
		ServiceType:     s.Draft.ServiceType,
		TotalPhases:     len(steps),
		CurrentPhase:    s.CurrentPhase,
		MaxReachedPhase: s.MaxReachedPhase,
		Steps:           make([]StepInfo, len(steps)),
	}
	for i, st := range steps {
		phase := i + 1
		view.Steps[i] = StepInfo{
			Phase:   phase,
			ID:      st.ID,
			Title:   st.Title,
			Reached: phase <= s.MaxReachedPhase,
			Current: phase == s.CurrentPhase,
		}
	}
	return view
}
