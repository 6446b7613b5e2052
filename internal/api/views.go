package api

import (
	"lightbox/internal/pipeline"
	"lightbox/internal/services"
)

// ItemView is the JSON shape of one item.
type ItemView struct {
	Key           int    `json:"key"`
	Name          string `json:"name"`
	Locator       string `json:"locator,omitempty"`
	State         string `json:"state"`
	Phase         string `json:"phase"`
	ArtifactBytes int    `json:"artifact_bytes"`
	Failure       string `json:"failure,omitempty"`
	FailureLabel  string `json:"failure_label,omitempty"`
}

// StatsView is the JSON shape of pipeline counters.
type StatsView struct {
	Items             int            `json:"items"`
	ByState           map[string]int `json:"by_state"`
	TransformFailures int            `json:"transform_failures"`
	Fetching          int            `json:"fetching"`
	Transforming      int            `json:"transforming"`
	FetchQueued       int            `json:"fetch_queued"`
	TransformQueued   int            `json:"transform_queued"`
	Suspended         bool           `json:"suspended"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func itemView(item pipeline.Item) ItemView {
	view := ItemView{
		Key:           item.Key,
		Name:          item.Name,
		Locator:       item.Locator,
		State:         item.State.String(),
		Phase:         item.Phase(),
		ArtifactBytes: len(item.Artifact),
	}
	if item.Failure != nil {
		view.Failure = item.Failure.Error()
		view.FailureLabel = services.FailureLabel(item.Failure)
	}
	return view
}

func statsView(stats pipeline.Stats) StatsView {
	byState := make(map[string]int, len(stats.ByState))
	for state, count := range stats.ByState {
		byState[state.String()] = count
	}
	return StatsView{
		Items:             stats.Items,
		ByState:           byState,
		TransformFailures: stats.TransformFailures,
		Fetching:          stats.Fetching,
		Transforming:      stats.Transforming,
		FetchQueued:       stats.FetchQueued,
		TransformQueued:   stats.TransformQueued,
		Suspended:         stats.Suspended,
	}
}
