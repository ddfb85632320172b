package workflows

type IntakeFile struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

type IntakeInput struct {
	RunID         string       `json:"run_id"`
	Files         []IntakeFile `json:"files"`
	MaxBatchBytes int64        `json:"max_batch_bytes"`
	PageRenderCap int          `json:"page_render_cap"`
	RenderScale   float64      `json:"render_scale"`
	RenderQuality float64      `json:"render_quality"`
}

type FileProgress struct {
	Filename     string `json:"filename"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type IntakeProgress struct {
	RunID        string         `json:"run_id"`
	Phase        string         `json:"phase"`
	Progress     int            `json:"progress"`
	TotalBatches int            `json:"total_batches"`
	DoneBatches  int            `json:"done_batches"`
	Files        []FileProgress `json:"files"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

type ImageTrackInput struct {
	RunID         string       `json:"run_id"`
	Files         []IntakeFile `json:"files"`
	TotalMaxPages int          `json:"total_max_pages"`
	Scale         float64      `json:"scale"`
	Quality       float64      `json:"quality"`
}

type ImageTrackOutput struct {
	URLs []string `json:"urls"`
}
