package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrProjectAlreadyExists is returned when attempting to add a project with a root that already exists.
	ErrProjectAlreadyExists = zerr.New("project already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrUnknownProjectDependency is returned when a project declares a dependency on an unknown project path.
	ErrUnknownProjectDependency = zerr.New("unknown project dependency")

	// ErrCycleDetected is returned when a cycle is detected in a dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrProjectNotFound is returned when a requested project is not found in the graph.
	ErrProjectNotFound = zerr.New("project not found")

	// ErrInvalidWorkspaceRoot is returned when a workspace root cannot be resolved to an absolute, canonical directory.
	ErrInvalidWorkspaceRoot = zerr.New("invalid workspace root")

	// ErrPathNotFound is returned when a path does not exist at validation time.
	ErrPathNotFound = zerr.New("path not found")

	// ErrPathNotInWorkspace is returned when a joined or resolved path escapes its workspace root.
	ErrPathNotInWorkspace = zerr.New("path not in workspace")

	// ErrUnknownProjectByName is returned when a requires clause targets a project name that does not exist.
	ErrUnknownProjectByName = zerr.New("unknown project by name")

	// ErrUnknownProjectByPath is returned when a requires clause targets a project path that does not exist.
	ErrUnknownProjectByPath = zerr.New("unknown project by path")

	// ErrRequiredFromUnrelatedProject is returned when a requires clause targets a specific project that is not a
	// dependency (transitive or direct) of the requiring project.
	ErrRequiredFromUnrelatedProject = zerr.New("required task from unrelated project")

	// ErrNoMatchingTasks is returned when a requires clause's anchor set yields zero tasks with the requested name.
	ErrNoMatchingTasks = zerr.New("no matching tasks")

	// ErrNoMatchingTasksImplicitSelf is a specialization of ErrNoMatchingTasks for the implicit CurrentProject case.
	ErrNoMatchingTasksImplicitSelf = zerr.New("no task with that name in the current project")

	// ErrUnsupportedInputKind is returned when configuration declares an env-var or command input, which nabs
	// refuses rather than silently ignore (see spec Open Questions).
	ErrUnsupportedInputKind = zerr.New("unsupported input kind")

	// ErrConfigNotFound is returned when no workspace manifest can be found by upward walk.
	ErrConfigNotFound = zerr.New("configuration not found")

	// ErrConfigRead is returned when a configuration file cannot be read.
	ErrConfigRead = zerr.New("failed to read configuration")

	// ErrConfigParse is returned when a configuration file fails to parse.
	ErrConfigParse = zerr.New("failed to parse configuration")

	// ErrConfigValidate is returned when configuration fails semantic validation.
	ErrConfigValidate = zerr.New("invalid configuration")

	// ErrMissingProjectName is returned when a project manifest omits its required name field.
	ErrMissingProjectName = zerr.New("project manifest missing name")

	// ErrInvalidProjectName is returned when a project name contains characters other than letters, digits,
	// underscore, or hyphen.
	ErrInvalidProjectName = zerr.New("invalid project name")

	// ErrDuplicateProjectName is returned when two projects in the same workspace declare the same display name.
	ErrDuplicateProjectName = zerr.New("duplicate project name")

	// ErrReservedTaskName is returned when a task is named "all", which is reserved for the run-everything selector.
	ErrReservedTaskName = zerr.New("task name is reserved")

	// ErrInvalidTaskName is returned when a task name contains characters reserved for display forms (":").
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrRegistryVersionUnsupported is returned when the hash registry file on disk carries an unknown or older
	// format version; operators must delete it rather than have it silently migrated.
	ErrRegistryVersionUnsupported = zerr.New("unsupported hash registry version")

	// ErrRegistryRead is returned when the hash registry file cannot be read.
	ErrRegistryRead = zerr.New("failed to read hash registry")

	// ErrRegistryWrite is returned when the hash registry file cannot be written.
	ErrRegistryWrite = zerr.New("failed to write hash registry")

	// ErrHashing is returned when computing a task's input hash fails (e.g. an input file disappears mid-read).
	ErrHashing = zerr.New("failed to hash task inputs")

	// ErrGit is returned when the git subprocess fails or produces unparsable output.
	ErrGit = zerr.New("git command failed")

	// ErrCommand is returned when a task's command fails to spawn or exits non-zero.
	ErrCommand = zerr.New("command failed")

	// ErrOutputPipe is returned when reading a child process's stdout/stderr fails.
	ErrOutputPipe = zerr.New("failed to read command output")

	// ErrFormatNotImplemented is returned when an output format name is unknown or has no implementation.
	ErrFormatNotImplemented = zerr.New("output format not implemented")

	// ErrNoTasksSelected is returned when a run invocation resolves to an empty task set.
	ErrNoTasksSelected = zerr.New("no tasks selected")
)
