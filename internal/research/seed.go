package research

// seedCases returns the compiled-in demo corpus: reckless-driving precedent
// summaries shaped like the production case index. Body text doubles as the
// lexical-search document.
func seedCases() []Case {
	return []Case{
		{
			CaseID:      "3151632",
			Title:       "Commonwealth v. Diaz",
			Body:        "Defendant charged with reckless driving after exceeding the posted limit by 40 mph on a wet roadway. The court held that speed alone, absent aggravating circumstances endangering life or property, is insufficient to sustain a reckless driving conviction. Conviction reversed.",
			Judge:       "Keenan",
			Court:       "Court of Appeals of Virginia",
			DateFiled:   "2014-06-17",
			SourceFile:  "reckless_driving_cases.json",
			AbsoluteURL: "/opinion/3151632/commonwealth-v-diaz/",
		},
		{
			CaseID:      "2897410",
			Title:       "State v. Whitmore",
			Body:        "Motion to dismiss granted where the arresting officer's radar calibration records were not produced. Uncorroborated speed estimates did not establish the gross negligence element of reckless driving beyond speeding.",
			Judge:       "Alvarez",
			Court:       "Superior Court of New Jersey, Appellate Division",
			DateFiled:   "2011-03-02",
			SourceFile:  "reckless_driving_cases.json",
			AbsoluteURL: "/opinion/2897410/state-v-whitmore/",
		},
		{
			CaseID:      "4410988",
			Title:       "People v. Okonkwo",
			Body:        "Evidence of weaving across lanes while texting supported a finding of willful and wanton disregard for the safety of persons. Conviction affirmed; the court distinguished momentary inattention from sustained distracted driving.",
			Judge:       "Brennan",
			Court:       "Appellate Court of Illinois, First District",
			DateFiled:   "2017-11-28",
			SourceFile:  "reckless_driving_cases.json",
			AbsoluteURL: "/opinion/4410988/people-v-okonkwo/",
		},
		{
			CaseID:      "3308267",
			Title:       "City of Spokane v. Hales",
			Body:        "Reckless driving conviction vacated where the trial court excluded the defendant's expert testimony on brake failure. A sudden mechanical emergency, if credited, negates the mens rea of recklessness.",
			Judge:       "Tanaka",
			Court:       "Court of Appeals of Washington, Division Three",
			DateFiled:   "2013-08-09",
			SourceFile:  "reckless_driving_cases.json",
			AbsoluteURL: "/opinion/3308267/city-of-spokane-v-hales/",
		},
		{
			CaseID:      "2654771",
			Title:       "State v. Pruitt",
			Body:        "Passing a stopped school bus with flashing lights at high speed constituted reckless driving per se. The court rejected the defense argument that clear visibility and the absence of children mitigated the conduct.",
			Judge:       "McCallister",
			Court:       "Court of Criminal Appeals of Tennessee",
			DateFiled:   "2009-05-21",
			SourceFile:  "reckless_driving_cases.json",
			AbsoluteURL: "/opinion/2654771/state-v-pruitt/",
		},
		{
			CaseID:      "3902114",
			Title:       "Commonwealth v. Ferreira",
			Body:        "Conviction reduced to improper driving where the defendant's speed was modest, the road empty, and no person or property was placed at risk. The court emphasized proportionality in grading driving offenses.",
			Judge:       "Osei",
			Court:       "Court of Appeals of Virginia",
			DateFiled:   "2016-02-10",
			SourceFile:  "reckless_driving_cases.json",
			AbsoluteURL: "/opinion/3902114/commonwealth-v-ferreira/",
		},
		{
			CaseID:      "4105339",
			Title:       "State v. Lindqvist",
			Body:        "Street racing on a public highway at night established willful disregard for safety notwithstanding the defendant's claim of a deserted roadway. Dash-camera footage was properly admitted over a chain-of-custody objection.",
			Judge:       "Haraldson",
			Court:       "Minnesota Court of Appeals",
			DateFiled:   "2018-09-04",
			SourceFile:  "reckless_driving_cases.json",
			AbsoluteURL: "/opinion/4105339/state-v-lindqvist/",
		},
		{
			CaseID:      "3577202",
			Title:       "People v. Marchetti",
			Body:        "A momentary lapse while adjusting vehicle controls, without more, is ordinary negligence rather than recklessness. Dismissal of the reckless driving count affirmed; the remaining traffic infraction was remanded.",
			Judge:       "Duval",
			Court:       "Supreme Court of New York, Appellate Term",
			DateFiled:   "2015-04-30",
			SourceFile:  "reckless_driving_cases.json",
			AbsoluteURL: "/opinion/3577202/people-v-marchetti/",
		},
	}
}
