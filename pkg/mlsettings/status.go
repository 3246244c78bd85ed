package mlsettings

import "ml-backend-settings/pkg/models"

// Indicator is the label and BEM modifier shown next to a backend title
type Indicator struct {
	Label    string
	Modifier string
	// Known is false for codes outside the five the API documents
	Known bool
}

var stateLabels = map[models.State]string{
	models.StateDisconnected: "Disconnected",
	models.StateConnected:    "Connected",
	models.StateError:        "Error",
	models.StateTraining:     "Training",
	models.StatePredicting:   "Predicting",
}

// Status maps a state code to its indicator
func Status(state models.State) Indicator {
	label, ok := stateLabels[state]
	if !ok {
		return Indicator{Label: "Unknown", Modifier: "state_unknown"}
	}
	return Indicator{
		Label:    label,
		Modifier: "state_" + string(state),
		Known:    true,
	}
}
