package booking

import "github.com/vishalsinha2004/Indora-Customer/internal/models"

// allowedTransitions represents the booking phase flow (diagram) as code.
// The universal reset edge back to selection is handled separately by
// Reset and is legal from every phase.
var allowedTransitions = map[models.Phase][]models.Phase{
	models.PhaseSelection:      {models.PhasePickupCapture},
	models.PhasePickupCapture:  {models.PhaseDropoffCapture},
	models.PhaseDropoffCapture: {models.PhaseQuoteRequested},
	models.PhaseQuoteRequested: {models.PhasePaymentPending, models.PhaseDropoffCapture},
	models.PhasePaymentPending: {models.PhaseSearching, models.PhaseDropoffCapture},
	models.PhaseSearching:      {models.PhaseMatched, models.PhaseCompleted},
	models.PhaseMatched:        {models.PhaseCompleted},
	models.PhaseCompleted:      {models.PhaseRated},
}

func CanTransition(from, to models.Phase) bool {
	if to == models.PhaseSelection {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
