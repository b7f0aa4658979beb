package ports

import "context"

// PipelineCompiler turns a pipeline source file into a compiled artifact.
type PipelineCompiler interface {
	Compile(ctx context.Context, sourcePath, outputPath, function string) error
}

// NotebookPreparer parameterizes a notebook in place and converts it to a script.
type NotebookPreparer interface {
	Prepare(ctx context.Context, notebookPath string, params map[string]any) error
	ConvertToScript(ctx context.Context, notebookPath string) (scriptPath string, err error)
}

// ScriptRunner executes a converted notebook script and reports its exit code.
type ScriptRunner interface {
	RunScript(ctx context.Context, scriptPath string) (exitCode int, err error)
}
