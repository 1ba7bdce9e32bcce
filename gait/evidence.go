package gait

// Static evidence table backing the clinical recommendations. Each entry
// pairs a primary source with optional supporting citations; rules reference
// entries by key so a recommendation always carries the literature behind the
// threshold that fired.

type evidenceEntry struct {
	primary    ResearchSource
	supporting []ResearchSource
}

var evidenceTable = map[string]evidenceEntry{
	"asymmetry_stroke": {
		primary: ResearchSource{
			Title:      "Gait asymmetry in community-ambulating stroke survivors",
			Authors:    "Patterson KK, Parafianowicz I, Danells CJ, et al.",
			Venue:      "Archives of Physical Medicine and Rehabilitation",
			Year:       2008,
			KeyFinding: "Spatiotemporal asymmetry above 10% distinguishes hemiparetic gait and correlates with motor impairment severity.",
		},
		supporting: []ResearchSource{
			{
				Title:      "Evaluation of gait symmetry after stroke: a comparison of current methods",
				Authors:    "Patterson KK, Gage WH, Brooks D, Black SE, McIlroy WE",
				Venue:      "Gait & Posture",
				Year:       2010,
				KeyFinding: "Symmetry ratios normalized by the side mean are robust across walking speeds.",
			},
		},
	},
	"cadence_norms": {
		primary: ResearchSource{
			Title:      "How fast is fast enough? Walking cadence as a practical estimate of intensity",
			Authors:    "Tudor-Locke C, Han H, Aguiar EJ, et al.",
			Venue:      "British Journal of Sports Medicine",
			Year:       2018,
			KeyFinding: "Healthy adult walking cadence clusters between 100 and 130 steps per minute.",
		},
		supporting: []ResearchSource{
			{
				Title:      "Normative spatiotemporal gait parameters in older adults",
				Authors:    "Hollman JH, McDade EM, Petersen RC",
				Venue:      "Gait & Posture",
				Year:       2011,
				KeyFinding: "Cadence below 100 steps/min in adults is associated with mobility impairment.",
			},
		},
	},
	"gait_variability": {
		primary: ResearchSource{
			Title:      "Gait variability: methods, modeling and meaning",
			Authors:    "Hausdorff JM",
			Venue:      "Journal of NeuroEngineering and Rehabilitation",
			Year:       2005,
			KeyFinding: "Increased stride-to-stride variability predicts fall risk and neurological decline.",
		},
	},
	"postural_stability": {
		primary: ResearchSource{
			Title:      "Acceleration patterns of the head and pelvis when walking on level and irregular surfaces",
			Authors:    "Menz HB, Lord SR, Fitzpatrick RC",
			Venue:      "Gait & Posture",
			Year:       2003,
			KeyFinding: "Mediolateral pelvis motion increases markedly when balance control is challenged.",
		},
	},
	"movement_smoothness": {
		primary: ResearchSource{
			Title:      "On the analysis of movement smoothness",
			Authors:    "Balasubramanian S, Melendez-Calderon A, Roby-Brami A, Burdet E",
			Venue:      "Journal of NeuroEngineering and Rehabilitation",
			Year:       2015,
			KeyFinding: "Jerk-based measures separate smooth practiced movement from impaired motor control.",
		},
	},
	"screening_quality": {
		primary: ResearchSource{
			Title:      "Quantitative gait markers and incident fall risk in older adults",
			Authors:    "Verghese J, Holtzer R, Lipton RB, Wang C",
			Venue:      "Journals of Gerontology Series A",
			Year:       2009,
			KeyFinding: "Quantitative gait screening requires adequate stride counts to be reliable.",
		},
	},
}

func evidenceFor(key string) (*ResearchSource, []ResearchSource) {
	entry, ok := evidenceTable[key]
	if !ok {
		return nil, nil
	}
	primary := entry.primary
	return &primary, entry.supporting
}
