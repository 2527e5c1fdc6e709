package prd

// MergeFeatures applies user overrides by position. A nil override leaves its
// feature unchanged and overrides beyond the end of features are ignored. The
// input slices are not modified.
func MergeFeatures(features []Feature, overrides []*FeatureOverride) []Feature {
	merged := make([]Feature, len(features))
	for i, f := range features {
		f.UserStoryIDs = append(StringList(nil), f.UserStoryIDs...)
		if i < len(overrides) && overrides[i] != nil {
			o := overrides[i]
			if o.Name != "" {
				f.Name = o.Name
			}
			if o.Summary != "" {
				f.Summary = o.Summary
			}
			if len(o.UserStoryIDs) > 0 {
				f.UserStoryIDs = append(StringList(nil), o.UserStoryIDs...)
			}
		}
		merged[i] = f
	}
	return merged
}

// StoriesForFeature returns the stories a feature references, in the order
// the feature lists them. Ids with no matching story are skipped.
func StoriesForFeature(f Feature, stories []UserStory) []UserStory {
	byID := make(map[string]UserStory, len(stories))
	for _, s := range stories {
		if _, ok := byID[s.ID]; !ok {
			byID[s.ID] = s
		}
	}

	var out []UserStory
	for _, id := range f.UserStoryIDs {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// FindStory returns the story with the given id.
func FindStory(stories []UserStory, id string) (UserStory, bool) {
	for _, s := range stories {
		if s.ID == id {
			return s, true
		}
	}
	return UserStory{}, false
}

// Finalize applies overrides to a copy of d and renders its artifacts.
func Finalize(featureName string, d *Data, overrides []*FeatureOverride) (*Data, Artifacts, error) {
	out := *d
	out.Features = MergeFeatures(d.Features, overrides)
	a, err := Render(featureName, &out)
	if err != nil {
		return nil, Artifacts{}, err
	}
	return &out, a, nil
}
