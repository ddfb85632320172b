package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractBatchActivity)
	w.RegisterActivity(a.ProbeBrochuresActivity)
	w.RegisterActivity(a.RasterizePagesActivity)
	w.RegisterActivity(a.UploadBrochureImagesActivity)
	w.RegisterActivity(a.UpdateRunStatusActivity)
	w.RegisterActivity(a.UpdateBrochureStatusesActivity)
	w.RegisterActivity(a.SetRunResultActivity)
	w.RegisterActivity(a.WriteRunArtifactsActivity)
}
