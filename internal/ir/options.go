package ir

// Named options of builtin calls, already checked against their tables.

type RunOptions struct {
	AllowFail bool `json:"allow_fail,omitempty"`
}

// SudoOptions are emitted as flags in field order.
type SudoOptions struct {
	User           string   `json:"user,omitempty"`
	NonInteractive bool     `json:"non_interactive,omitempty"`
	Invalidate     bool     `json:"invalidate,omitempty"`
	Prompt         string   `json:"prompt,omitempty"`
	HasPrompt      bool     `json:"has_prompt,omitempty"`
	PreserveEnvAll bool     `json:"preserve_env_all,omitempty"`
	PreserveEnv    []string `json:"preserve_env,omitempty"`
	AllowFail      bool     `json:"allow_fail,omitempty"`
}

type CaptureOptions struct {
	AllowFail bool `json:"allow_fail,omitempty"`
	Stderr    bool `json:"stderr,omitempty"`
}

type PrintOptions struct {
	Stderr    bool `json:"stderr,omitempty"`
	NoNewline bool `json:"no_newline,omitempty"`
}

// RedirectOptions: more than one Stdout target is a multi-sink redirect.
type RedirectOptions struct {
	Stdout         []*Expr `json:"stdout,omitempty"`
	Stderr         *Expr   `json:"stderr,omitempty"`
	Stdin          *Expr   `json:"stdin,omitempty"`
	Append         bool    `json:"append,omitempty"`
	StderrToStdout bool    `json:"stderr_to_stdout,omitempty"`
}

type LogOptions struct {
	Path   *Expr `json:"path"`
	Append bool  `json:"append,omitempty"`
}
