package launcher

import (
	"log/slog"

	"github.com/CarterFendley/pipelines/internal/infra/inject"
)

// Image references the component test rewrites. Tags look like 1.0.0-rc.3, hence both "-" and ".".
// A reference starts the line or follows whitespace or a quote.
const (
	imageLead = `(?P<lead>^|[\s"'])`

	ConfusionMatrixImagePattern = imageLead + `gcr\.io/ml-pipeline/ml-pipeline/ml-pipeline-local-confusion-matrix:(\w+|[.-])+`
	ROCImagePattern             = imageLead + `gcr\.io/ml-pipeline/ml-pipeline/ml-pipeline-local-roc:(\w+|[.-])+`
	GCPImagePattern             = imageLead + `gcr\.io/ml-pipeline/ml-pipeline-gcp:(\w|[.-])+`
)

// GCPImageTest is the only sample whose dataproc image is substituted.
const GCPImageTest = "xgboost_training_cm"

// Injector rewrites image references in a compiled artifact.
type Injector interface {
	Inject(artifactPath, testName string) error
}

// NoopInjector leaves artifacts untouched.
type NoopInjector struct{}

func (NoopInjector) Inject(string, string) error { return nil }

// ComponentImages are the images substituted by the component test.
type ComponentImages struct {
	GCP             string
	ConfusionMatrix string
	ROC             string
}

// ComponentInjector substitutes locally built component images.
type ComponentInjector struct {
	Images ComponentImages
	Log    *slog.Logger
}

// Substitutions returns the substitutions that apply to testName.
// Substitutions without a replacement image are left out.
func (c ComponentInjector) Substitutions(testName string) []inject.Substitution {
	var subs []inject.Substitution
	add := func(pattern, image string) {
		if image != "" {
			subs = append(subs, inject.MustSubstitution(pattern, image))
		}
	}

	add(ConfusionMatrixImagePattern, c.Images.ConfusionMatrix)
	add(ROCImagePattern, c.Images.ROC)
	if testName == GCPImageTest {
		add(GCPImagePattern, c.Images.GCP)
	}
	return subs
}

func (c ComponentInjector) Inject(artifactPath, testName string) error {
	subs := c.Substitutions(testName)
	if len(subs) == 0 {
		return nil
	}
	if c.Log != nil {
		c.Log.Info("launcher.inject", "artifact", artifactPath, "substitutions", len(subs))
	}
	return inject.File(artifactPath, subs)
}
