package catalog

import "github.com/majkahealth/majka-server/internal/domain"

func yesNo() []domain.Option {
	return []domain.Option{
		{Label: "Yes", Value: "Yes", OrderIndex: 1},
		{Label: "No", Value: "No", OrderIndex: 2},
	}
}

// DefaultQuestions is the intake catalog seeded on first run. IDs are
// assigned by the database; only text, order and options are defined here.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{Text: "How did you deliver your baby?", OrderIndex: 1, Options: []domain.Option{
			{Label: "Vaginal birth", Value: "vaginal", OrderIndex: 1},
			{Label: "C-section", Value: "c_section", OrderIndex: 2},
			{Label: "Assisted (forceps/vacuum)", Value: "assisted", OrderIndex: 3},
		}},
		{Text: "How many weeks postpartum are you right now?", OrderIndex: 2},
		{Text: "Are you currently experiencing any pain or discomfort?", OrderIndex: 3, Options: yesNo()},
		{Text: "If you have pain, how strong is it on a scale of 0 to 10?", OrderIndex: 4},
		{Text: "Have you had a fever in the last few days?", OrderIndex: 5, Options: yesNo()},
		{Text: "Are you experiencing heavy bleeding (soaking more than one pad in an hour)?", OrderIndex: 6, Options: yesNo()},
		{Text: "Do you feel pelvic heaviness or bulging?", OrderIndex: 7, Options: yesNo()},
		{Text: "Do you leak urine when you cough, sneeze or laugh?", OrderIndex: 8, Options: yesNo()},
		{Text: "Do you notice a gap or doming along the middle of your belly?", OrderIndex: 9, Options: yesNo()},
		{Text: "How is your incision or perineal area healing?", OrderIndex: 10, Options: []domain.Option{
			{Label: "Healed, no issues", Value: "healed", OrderIndex: 1},
			{Label: "Still tender", Value: "tender", OrderIndex: 2},
			{Label: "Painful or getting worse", Value: "worsening", OrderIndex: 3},
		}},
		{Text: "How would you describe your energy these days?", OrderIndex: 11, Options: []domain.Option{
			{Label: "Running on empty", Value: "exhausted", OrderIndex: 1},
			{Label: "Up and down", Value: "variable", OrderIndex: 2},
			{Label: "Mostly good", Value: "good", OrderIndex: 3},
		}},
		{Text: "How many hours of sleep do you usually get in a night?", OrderIndex: 12},
		{Text: "How active were you before pregnancy?", OrderIndex: 13, Options: []domain.Option{
			{Label: "Not very active", Value: "low", OrderIndex: 1},
			{Label: "Moderately active", Value: "moderate", OrderIndex: 2},
			{Label: "Very active", Value: "high", OrderIndex: 3},
		}},
		{Text: "Have you exercised since giving birth?", OrderIndex: 14, Options: yesNo()},
		{Text: "How many minutes per day can you realistically move or exercise?", OrderIndex: 15},
		{Text: "Are you breastfeeding?", OrderIndex: 16, Options: yesNo()},
		{Text: "Has your healthcare provider cleared you for exercise?", OrderIndex: 17, Options: []domain.Option{
			{Label: "Yes", Value: "Yes", OrderIndex: 1},
			{Label: "No", Value: "No", OrderIndex: 2},
			{Label: "Not yet, appointment pending", Value: "pending", OrderIndex: 3},
		}},
		{Text: "What matters most to you right now in your recovery?", OrderIndex: 18},
	}
}
