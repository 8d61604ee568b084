package models

type Artifact struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Era         string `json:"era" yaml:"era"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
	Source      string `json:"source" yaml:"source"`
}

type Site struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Location    string `json:"location" yaml:"location"`
	Period      string `json:"period" yaml:"period"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
	Source      string `json:"source" yaml:"source"`
}

type ResearchTopic struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Field       string `json:"field" yaml:"field"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
	Source      string `json:"source" yaml:"source"`
}
