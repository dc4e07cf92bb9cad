package models

type SweepRunView struct {
	ID         int64  `json:"id"`
	Trigger    string `json:"trigger"`
	Started    string `json:"started"`
	Finished   string `json:"finished,omitempty"`
	Scanned    int    `json:"scanned"`
	Candidates int    `json:"candidates"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
}
