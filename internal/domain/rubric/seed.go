package rubric

// seedSteps returns the built-in sales-coaching rubric. The six steps with
// hand-tuned threshold triples keep their historically calibrated cutoffs;
// the remaining steps are classified from structural level counts.
func seedSteps() []Step {
	return []Step{
		{
			ID: 1, Title: "Preparation", Order: 1, TargetScore: 12,
			Description: "Pre-call planning and account research.",
			Substeps: []Substep{
				{
					ID: 11, StepID: 1, Title: "Call objectives", Order: 1,
					Behaviors: []Behavior{
						{ID: 1101, SubstepID: 11, Order: 1, Level: 1, Description: "States a generic reason for the visit"},
						{ID: 1102, SubstepID: 11, Order: 2, Level: 2, Description: "Defines a measurable call objective"},
						{ID: 1103, SubstepID: 11, Order: 3, Level: 3, Description: "Links the objective to the account plan"},
						{ID: 1104, SubstepID: 11, Order: 4, Level: 4, Description: "Prepares primary and fallback objectives"},
					},
				},
				{
					ID: 12, StepID: 1, Title: "Customer insight", Order: 2,
					Behaviors: []Behavior{
						{ID: 1201, SubstepID: 12, Order: 1, Level: 2, Description: "Reviews previous call notes"},
						{ID: 1202, SubstepID: 12, Order: 2, Level: 3, Description: "Anticipates customer priorities from history"},
						{ID: 1203, SubstepID: 12, Order: 3, Level: 4, Description: "Builds a tailored value hypothesis"},
					},
				},
			},
		},
		{
			ID: 2, Title: "Opening the Call", Order: 2, TargetScore: 10,
			Description: "First minutes: agenda, relevance, credibility.",
			Substeps: []Substep{
				{
					ID: 21, StepID: 2, Title: "Agenda setting", Order: 1,
					Behaviors: []Behavior{
						{ID: 2101, SubstepID: 21, Order: 1, Level: 1, Description: "Opens with small talk only"},
						{ID: 2102, SubstepID: 21, Order: 2, Level: 2, Description: "Proposes an agenda"},
						{ID: 2103, SubstepID: 21, Order: 3, Level: 3, Description: "Checks the agenda against customer time and interest"},
					},
				},
				{
					ID: 22, StepID: 2, Title: "Relevance statement", Order: 2,
					Behaviors: []Behavior{
						{ID: 2201, SubstepID: 22, Order: 1, Level: 2, Description: "States why the visit matters to the customer"},
						{ID: 2202, SubstepID: 22, Order: 2, Level: 3, Description: "References a customer-specific trigger"},
						{ID: 2203, SubstepID: 22, Order: 3, Level: 4, Description: "Connects the opening to a prior commitment"},
					},
				},
			},
		},
		{
			ID: 3, Title: "Active Listening", Order: 3, TargetScore: 9,
			Description: "Attending, acknowledging, and verifying understanding.",
			Thresholds:  &Thresholds{Qualified: 2, Experienced: 2, Master: 3},
			Substeps: []Substep{
				{
					ID: 31, StepID: 3, Title: "Attending", Order: 1,
					Behaviors: []Behavior{
						{ID: 3101, SubstepID: 31, Order: 1, Level: 1, Description: "Lets the customer finish sentences"},
						{ID: 3102, SubstepID: 31, Order: 2, Level: 2, Description: "Takes notes on customer statements"},
						{ID: 3103, SubstepID: 31, Order: 3, Level: 3, Description: "Picks up and explores emotional cues"},
					},
				},
				{
					ID: 32, StepID: 3, Title: "Verifying", Order: 2,
					Behaviors: []Behavior{
						{ID: 3201, SubstepID: 32, Order: 1, Level: 2, Description: "Paraphrases key customer statements"},
						{ID: 3202, SubstepID: 32, Order: 2, Level: 4, Description: "Confirms understanding before responding"},
					},
				},
			},
		},
		{
			ID: 4, Title: "Analyzing Results", Order: 4, TargetScore: 10,
			Description: "Working with data and evidence during the conversation.",
			Thresholds:  &Thresholds{Qualified: 2, Experienced: 3, Master: 4},
			Substeps: []Substep{
				{
					ID: 41, StepID: 4, Title: "Data review", Order: 1,
					Behaviors: []Behavior{
						{ID: 4101, SubstepID: 41, Order: 1, Level: 1, Description: "Mentions results without interpretation"},
						{ID: 4102, SubstepID: 41, Order: 2, Level: 2, Description: "Walks through results relevant to the customer"},
						{ID: 4103, SubstepID: 41, Order: 3, Level: 3, Description: "Interprets trends and outliers with the customer"},
					},
				},
				{
					ID: 42, StepID: 4, Title: "Implications", Order: 2,
					Behaviors: []Behavior{
						{ID: 4201, SubstepID: 42, Order: 1, Level: 3, Description: "Translates findings into customer impact"},
						{ID: 4202, SubstepID: 42, Order: 2, Level: 4, Description: "Agrees follow-up analysis with the customer"},
					},
				},
			},
		},
		{
			ID: 5, Title: "Objection Handling", Order: 5, TargetScore: 11,
			Description: "Surfacing, understanding, and resolving resistance.",
			Thresholds:  &Thresholds{Qualified: 2, Experienced: 3, Master: 4},
			Substeps: []Substep{
				{
					ID: 51, StepID: 5, Title: "Clarifying the objection", Order: 1,
					Behaviors: []Behavior{
						{ID: 5101, SubstepID: 51, Order: 1, Level: 1, Description: "Responds immediately without probing"},
						{ID: 5102, SubstepID: 51, Order: 2, Level: 2, Description: "Asks questions to isolate the real concern"},
						{ID: 5103, SubstepID: 51, Order: 3, Level: 3, Description: "Distinguishes misunderstanding from real drawback"},
					},
				},
				{
					ID: 52, StepID: 5, Title: "Resolving", Order: 2,
					Behaviors: []Behavior{
						{ID: 5201, SubstepID: 52, Order: 1, Level: 2, Description: "Answers with standard proof points"},
						{ID: 5202, SubstepID: 52, Order: 2, Level: 3, Description: "Matches evidence to the specific concern"},
						{ID: 5203, SubstepID: 52, Order: 3, Level: 4, Description: "Verifies the objection is fully resolved"},
					},
				},
			},
		},
		{
			ID: 6, Title: "Summarizing", Order: 6, TargetScore: 8,
			Description: "Condensing the conversation into agreed points.",
			Thresholds:  &Thresholds{Qualified: 2, Experienced: 3, Master: 2},
			Substeps: []Substep{
				{
					ID: 61, StepID: 6, Title: "Recap", Order: 1,
					Behaviors: []Behavior{
						{ID: 6101, SubstepID: 61, Order: 1, Level: 1, Description: "Repeats own key messages only"},
						{ID: 6102, SubstepID: 61, Order: 2, Level: 2, Description: "Summarizes customer needs in their words"},
						{ID: 6103, SubstepID: 61, Order: 3, Level: 3, Description: "Summarizes agreements and open points"},
						{ID: 6104, SubstepID: 61, Order: 4, Level: 4, Description: "Has the customer voice the summary"},
					},
				},
			},
		},
		{
			ID: 7, Title: "Asking for Commitment", Order: 7, TargetScore: 9,
			Description: "Closing on a concrete, dated next step.",
			Thresholds:  &Thresholds{Qualified: 2, Experienced: 3, Master: 2},
			Substeps: []Substep{
				{
					ID: 71, StepID: 7, Title: "The ask", Order: 1,
					Behaviors: []Behavior{
						{ID: 7101, SubstepID: 71, Order: 1, Level: 1, Description: "Ends the call without a request"},
						{ID: 7102, SubstepID: 71, Order: 2, Level: 2, Description: "Asks for a general intention"},
						{ID: 7103, SubstepID: 71, Order: 3, Level: 3, Description: "Asks for a specific, dated commitment"},
						{ID: 7104, SubstepID: 71, Order: 4, Level: 4, Description: "Handles hesitation and re-asks"},
					},
				},
			},
		},
		{
			ID: 8, Title: "Maintaining Rapport", Order: 8, TargetScore: 10,
			Description: "Relationship quality across the whole conversation.",
			Thresholds:  &Thresholds{Qualified: 3, Experienced: 4, Master: 5},
			Substeps: []Substep{
				{
					ID: 81, StepID: 8, Title: "Tone and presence", Order: 1,
					Behaviors: []Behavior{
						{ID: 8101, SubstepID: 81, Order: 1, Level: 1, Description: "Maintains a polite, neutral tone"},
						{ID: 8102, SubstepID: 81, Order: 2, Level: 2, Description: "Adapts pace and style to the customer"},
						{ID: 8103, SubstepID: 81, Order: 3, Level: 3, Description: "Acknowledges pressure or constraints openly"},
					},
				},
				{
					ID: 82, StepID: 8, Title: "Trust signals", Order: 2,
					Behaviors: []Behavior{
						{ID: 8201, SubstepID: 82, Order: 1, Level: 2, Description: "Keeps earlier promises visible"},
						{ID: 8202, SubstepID: 82, Order: 2, Level: 3, Description: "Admits limits of own product honestly"},
						{ID: 8203, SubstepID: 82, Order: 3, Level: 4, Description: "Is invited back by the customer"},
					},
				},
			},
		},
	}
}
