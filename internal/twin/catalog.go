package twin

// Compiled-in profile catalog. Characteristics are 1-10 scores; evidence
// snippets cite observed behavior backing each score.

var judges = []JudgeProfile{
	{
		Name: "Hon. Sarah Mitchell",
		Characteristics: JudgeCharacteristics{
			PleadingStrictness: 6,
			PrecedentWeight:    8,
			PolicyReceptivity:  5,
			PlaintiffFriendly:  4,
		},
		EvidenceSnippets: map[string][]string{
			"pleadingStrictness": {
				"Requires detailed factual allegations in consumer protection cases",
				"Generally applies Iqbal/Twombly standards rigorously",
			},
			"precedentWeight": {
				"Strong adherence to Circuit precedent",
				"Values consumer perception surveys when available",
			},
			"policyReceptivity": {
				"Moderate on context defenses in labeling cases",
				"Balances consumer protection with business interests",
			},
			"plaintiffFriendly": {
				"Slightly defense-leaning in commercial litigation",
				"Grants MTD more frequently than district average",
			},
		},
		Notes: "Appointed 2019. Former commercial litigator with expertise in consumer protection law. Known for thorough legal analysis and preference for early case resolution.",
	},
	{
		Name: "Hon. Marcus Keenan",
		Characteristics: JudgeCharacteristics{
			PleadingStrictness: 8,
			PrecedentWeight:    7,
			PolicyReceptivity:  3,
			PlaintiffFriendly:  5,
		},
		EvidenceSnippets: map[string][]string{
			"pleadingStrictness": {
				"Dismisses traffic cases where the charging document omits the mental-state element",
			},
			"precedentWeight": {
				"Reliably follows appellate guidance on recklessness standards",
			},
			"policyReceptivity": {
				"Rarely moved by deterrence arguments from the prosecution",
			},
			"plaintiffFriendly": {
				"No measurable lean in bench trial outcomes",
			},
		},
		Notes: "Long tenure on the traffic and misdemeanor docket. Expects precise statutory argument and penalizes boilerplate filings.",
	},
	{
		Name: "Hon. Elena Alvarez",
		Characteristics: JudgeCharacteristics{
			PleadingStrictness: 4,
			PrecedentWeight:    6,
			PolicyReceptivity:  8,
			PlaintiffFriendly:  6,
		},
		EvidenceSnippets: map[string][]string{
			"pleadingStrictness": {
				"Permits amendment liberally; substance over form",
			},
			"precedentWeight": {
				"Cites precedent but weighs equities heavily",
			},
			"policyReceptivity": {
				"Receptive to public-safety framing on both sides",
			},
			"plaintiffFriendly": {
				"Leans toward the state in cases involving injury",
			},
		},
		Notes: "Former public defender. Engaged questioner at oral argument; credits well-prepared expert testimony.",
	},
}

var opposing = []OpposingProfile{
	{
		Name:                "Miller & Associates LLP",
		AggressivenessScore: 7,
		LikelyMoves: []string{
			"File comprehensive opposition with consumer survey evidence",
			"Argue front-label dominance theory",
			"Request jurisdictional discovery on FDA compliance",
			"Seek class certification early in litigation",
		},
		TypicalArguments: []string{
			"Front-label claims cannot be cured by back-panel disclosures",
			"Reasonable consumer focuses on prominent front labeling",
			"Economic injury presumed from deceptive labeling",
		},
		Weaknesses: []string{
			"Limited success with price premium arguments",
			"Tendency to over-litigate discovery disputes",
			"Weak on federal preemption defenses",
		},
	},
	{
		Name:                "ADA Rachel Tormey",
		AggressivenessScore: 8,
		LikelyMoves: []string{
			"Front-load eyewitness testimony",
			"Move in limine to exclude defense accident-reconstruction experts",
			"Offer a plea only after the defense discloses its expert",
		},
		TypicalArguments: []string{
			"Speed combined with traffic conditions establishes willful disregard",
			"Mechanical-failure claims require maintenance records, not speculation",
			"Flight from the scene evidences consciousness of guilt",
		},
		Weaknesses: []string{
			"Thin cross-examination of technical experts",
			"Overcharges marginal cases, inviting lesser-included verdicts",
		},
	},
	{
		Name:                "ADA Paul Nakamura",
		AggressivenessScore: 5,
		LikelyMoves: []string{
			"Stipulate to undisputed facts to narrow the trial",
			"Offer deferred adjudication on clean driving records",
		},
		TypicalArguments: []string{
			"The statutory standard is objective, not subjective",
			"Jury may infer recklessness from the totality of conduct",
		},
		Weaknesses: []string{
			"Reluctant to try cases with contested expert evidence",
		},
	},
}
