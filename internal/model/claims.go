package model

// Claim represents a single participant claim extracted upstream.
// Claims are read-only in this subsystem; the extraction stage owns them.
type Claim struct {
	Text      string `json:"text"`       // The claim text itself
	Speaker   string `json:"speaker"`    // Participant display name
	CommentID string `json:"comment_id"` // Source comment the claim came from
	Topic     string `json:"topic"`      // Declared topic name
	Subtopic  string `json:"subtopic"`   // Declared subtopic name
}

// Subtopic groups the claims filed under one subtopic.
// Claim order is insertion order and must survive end-to-end.
type Subtopic struct {
	Claims []Claim `json:"claims"`
}

// Topic groups the subtopics filed under one topic.
type Topic struct {
	Subtopics map[string]Subtopic `json:"subtopics"`
}

// ClaimsTree is the full topic → subtopic → claims hierarchy produced by
// the upstream clustering step.
type ClaimsTree map[string]Topic

// SubtopicMetadata carries the short description the upstream taxonomy
// assigned to a subtopic.
type SubtopicMetadata struct {
	Name        string `json:"subtopic_name"`
	Description string `json:"subtopic_short_description"`
}

// TopicMetadata carries the upstream taxonomy entry for one topic.
// The metadata list order defines the traversal order of the run.
type TopicMetadata struct {
	Name        string             `json:"topic_name"`
	Description string             `json:"topic_short_description"`
	Subtopics   []SubtopicMetadata `json:"subtopics"`
}

// SubtopicWorkItem is one unit of orchestrated work: a subtopic eligible
// for crux extraction together with everything a model call needs.
// Created once by the selector and never mutated afterwards.
type SubtopicWorkItem struct {
	Topic         string
	Subtopic      string
	Claims        []Claim
	Description   string
	Label         string // "topic → subtopic", used in prompts and logs
	Ordinal       int    // diagnostic only, traversal position
	TotalSpeakers int    // distinct speakers within this subtopic
}
