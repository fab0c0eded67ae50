package picker

// Action is an input to Reduce.
type Action interface {
	isAction()
}

// ListLoaded carries a successful list response.
type ListLoaded struct {
	Token uint64
	Files []string
}

// ListFailed carries a failed list request.
type ListFailed struct {
	Token uint64
	Err   error
}

// UploadSucceeded reports that Name was stored by the backend.
type UploadSucceeded struct {
	Name string
}

// UploadFailed reports a failed upload of Name.
type UploadFailed struct {
	Name string
	Err  error
}

// FileChosen is a selection made by the user in the dropdown.
type FileChosen struct {
	Name string
}

func (ListLoaded) isAction()      {}
func (ListFailed) isAction()      {}
func (UploadSucceeded) isAction() {}
func (UploadFailed) isAction()    {}
func (FileChosen) isAction()      {}

// Reducer applies actions to State.
type Reducer struct {
	ordering Ordering
}

// NewReducer creates a reducer. An unknown ordering falls back to
// LastInitiatedWins.
func NewReducer(ordering Ordering) *Reducer {
	if _, ok := ParseOrdering(string(ordering)); !ok || ordering == "" {
		ordering = LastInitiatedWins
	}
	return &Reducer{ordering: ordering}
}

// Ordering returns the reducer's response ordering.
func (r *Reducer) Ordering() Ordering {
	return r.ordering
}

// BeginList reserves the token for a new list request.
func (r *Reducer) BeginList(state State) (State, uint64) {
	state.listToken++
	return state, state.listToken
}

// stale reports whether a list response for token must be dropped.
func (r *Reducer) stale(state State, token uint64) bool {
	return r.ordering == LastInitiatedWins && token != state.listToken
}

// Reduce applies action to state. selected is the host's current selection.
func (r *Reducer) Reduce(state State, action Action, selected string) (State, Effect) {
	switch a := action.(type) {

	case ListLoaded:
		if r.stale(state, a.Token) {
			return state, Effect{}
		}
		files := a.Files
		if files == nil {
			files = []string{}
		}
		state.Files = files
		state.Error = ""

		if len(files) == 0 {
			return state, selectFile("")
		}
		if selected == "" || !state.Contains(selected) {
			return state, selectFile(files[len(files)-1])
		}
		return state, Effect{}

	case ListFailed:
		if r.stale(state, a.Token) {
			return state, Effect{}
		}
		state.Error = MsgListFailed
		return state, Effect{}

	case UploadSucceeded:
		files := make([]string, 0, len(state.Files)+1)
		files = append(files, state.Files...)
		state.Files = append(files, a.Name)
		state.Error = ""
		return state, selectFile(a.Name)

	case UploadFailed:
		state.Error = MsgUploadFailed
		return state, Effect{Alert: AlertUploadFail}

	case FileChosen:
		return state, selectFile(a.Name)
	}

	return state, Effect{}
}
