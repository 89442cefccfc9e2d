package model

// Position is a speaker's stance on one crux.
type Position string

const (
	PositionAgree      Position = "agree"
	PositionDisagree   Position = "disagree"
	PositionNoPosition Position = "no_position"
)

// SubtopicCrux is the validated, scored output for one subtopic: the
// statement that best splits its participants, plus who landed where.
// Speaker entries are "id:name" tags using the run's anonymous IDs.
type SubtopicCrux struct {
	Topic             string   `json:"topic"`
	Subtopic          string   `json:"subtopic"`
	CruxClaim         string   `json:"crux_claim"`
	Agree             []string `json:"agree"`
	Disagree          []string `json:"disagree"`
	NoClearPosition   []string `json:"no_clear_position"`
	Explanation       string   `json:"explanation"`
	AgreementScore    float64  `json:"agreement_score"`
	DisagreementScore float64  `json:"disagreement_score"`
	ControversyScore  float64  `json:"controversy_score"`
	SpeakersInvolved  int      `json:"speakers_involved"`
	TotalSpeakers     int      `json:"total_speakers"`
}

// TopicScore is the per-topic rollup over surviving cruxes.
type TopicScore struct {
	Topic              string  `json:"topic"`
	AverageControversy float64 `json:"average_controversy"`
	SubtopicCount      int     `json:"subtopic_count"`
	TotalSpeakers      int     `json:"total_speakers"`
}

// SpeakerCruxMatrix is the dense speaker × crux position grid built for
// visualization. Matrix is indexed [speaker][crux].
type SpeakerCruxMatrix struct {
	Speakers   []string     `json:"speakers"`
	CruxLabels []string     `json:"crux_labels"`
	Matrix     [][]Position `json:"matrix"`
}

// TokenUsage accumulates token counts across model calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates another usage record into this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens = u.InputTokens + u.OutputTokens
}

// PipelineResult is the single externally visible artifact of a run.
type PipelineResult struct {
	SubtopicCruxes []SubtopicCrux    `json:"subtopic_cruxes"`
	TopicScores    []TopicScore      `json:"topic_scores"`
	Matrix         SpeakerCruxMatrix `json:"speaker_crux_matrix"`
	Usage          TokenUsage        `json:"usage"`
	Cost           float64           `json:"cost_usd"`
}

// RunOptions are optional per-run knobs passed through by the job runner.
type RunOptions struct {
	ReportID         string `json:"report_id,omitempty"`
	UserID           string `json:"user_id,omitempty"`
	EnableTelemetry  bool   `json:"enable_telemetry,omitempty"`
	TelemetryProject string `json:"telemetry_project,omitempty"`
}
