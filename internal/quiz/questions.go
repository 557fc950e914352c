package quiz

// DefaultQuestions is the production funnel question set. Option order
// matters: the client renders options in this order and answers are recorded
// by question id.
func DefaultQuestions() []Question {
	return []Question{
		{
			ID:   1,
			Text: "Was ist dein aktueller Beruf?",
			Options: []Option{
				{Text: "Azubi/Student/in"},
				{Text: "Angestellte/r"},
				{Text: "Unternehmer/in"},
				{Text: "aktuell arbeitslos", Outcome: OutcomeDisqualify},
			},
		},
		{
			ID:   2,
			Text: "Bist du mit deiner aktuellen Situation zufrieden?",
			Options: []Option{
				{Text: "Ja, aber mehr schadet nicht"},
				{Text: "Nein, ich möchte was verändern"},
			},
		},
		{
			ID:   3,
			Text: "Wie alt bist du?",
			Options: []Option{
				{Text: "Unter 18", Outcome: OutcomeDisqualify},
				{Text: "zwischen 18-26"},
				{Text: "zwischen 26-40"},
				{Text: "über 40"},
			},
		},
		{
			ID:   4,
			Text: "Wie viel Zeit hast du am Tag um sie in dein zweites Standbein zu investieren?",
			Options: []Option{
				{Text: "1-2H"},
				{Text: "2-4H"},
				{Text: "4H oder mehr"},
			},
		},
		{
			ID:   5,
			Text: "Ist dir bewusst, dass es sich hier um einen High Income Skill handelt den du lernen kannst und NICHT um ein Job Angebot?",
			Options: []Option{
				{Text: "Ja"},
				{Text: "Nein", Outcome: OutcomeFollowUp},
			},
		},
		{
			ID:   6,
			Text: "Wähle aus, was dir am Wichtigsten ist!",
			Options: []Option{
				{Text: "Einkommen über 2.500€"},
				{Text: "Mehr Zeit für Freunde und Familie"},
				{Text: "Arbeiten von Zuhause"},
				{Text: "Ortsunabhängig"},
			},
		},
	}
}

// DefaultFollowUp is the conditional extra question shown when question 5 is
// answered with "Nein".
func DefaultFollowUp() Question {
	return Question{
		ID:   7,
		Text: "Wenn du einen Mehrwert erkennen würdest + eine schriftliche Garantie von uns bekommst, könntest du es dir dann vorstellen das System zu nutzen?",
		Options: []Option{
			{Text: "Ja"},
			{Text: "Nein", Outcome: OutcomeDisqualify},
		},
	}
}
