package toolchain

// Tools names the external executables. Zero values fall back to DefaultTools.
type Tools struct {
	KFP       string
	Papermill string
	Jupyter   string
	IPython   string
}

func DefaultTools() Tools {
	return Tools{
		KFP:       "kfp",
		Papermill: "papermill",
		Jupyter:   "jupyter",
		IPython:   "ipython",
	}
}

func (t Tools) withDefaults() Tools {
	d := DefaultTools()
	if t.KFP == "" {
		t.KFP = d.KFP
	}
	if t.Papermill == "" {
		t.Papermill = d.Papermill
	}
	if t.Jupyter == "" {
		t.Jupyter = d.Jupyter
	}
	if t.IPython == "" {
		t.IPython = d.IPython
	}
	return t
}
