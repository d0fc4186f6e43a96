package trials

// Trial is one registered clinical study.
type Trial struct {
	Title         string   `json:"title"`
	Sponsor       string   `json:"sponsor"`
	Phase         string   `json:"phase"`
	Status        string   `json:"status"`
	Interventions []string `json:"interventions"`
	URL           string   `json:"url"`
	Patients      int      `json:"patients"`
	Completion    string   `json:"completion"`
}

// Registry is a fixed list of trials.
type Registry struct {
	trials []Trial
}

// Default returns the built-in registry.
func Default() *Registry {
	return New([]Trial{
		{
			Title:         "Phase III Liver Cancer Immunotherapy Combination Study",
			Sponsor:       "Roche",
			Phase:         "Phase III",
			Status:        "Recruiting",
			Interventions: []string{"PD-1 Inhibitor", "Anti-angiogenic Drugs"},
			URL:           "#",
			Patients:      450,
			Completion:    "2024-12",
		},
		{
			Title:         "Targeted Drug Combination for Advanced Liver Cancer",
			Sponsor:       "Bayer",
			Phase:         "Phase II",
			Status:        "Active, not recruiting",
			Interventions: []string{"Sorafenib", "Regorafenib"},
			URL:           "#",
			Patients:      280,
			Completion:    "2024-09",
		},
		{
			Title:         "Novel Liver Cancer Targeted Therapy Clinical Trial",
			Sponsor:       "Hengrui Medicine",
			Phase:         "Phase II",
			Status:        "Recruiting",
			Interventions: []string{"Small Molecule Inhibitor", "Immunomodulator"},
			URL:           "#",
			Patients:      320,
			Completion:    "2025-03",
		},
	})
}

func New(trials []Trial) *Registry {
	return &Registry{trials: clone(trials)}
}

// List returns a copy of every trial.
func (r *Registry) List() []Trial { return clone(r.trials) }

func (r *Registry) Len() int { return len(r.trials) }

// CountBySponsor counts trials per sponsor name.
func (r *Registry) CountBySponsor() map[string]int {
	out := make(map[string]int)
	for _, t := range r.trials {
		out[t.Sponsor]++
	}
	return out
}

func clone(in []Trial) []Trial {
	out := make([]Trial, len(in))
	for i, t := range in {
		t.Interventions = append([]string(nil), t.Interventions...)
		out[i] = t
	}
	return out
}
