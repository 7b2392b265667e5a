package editor

// EditorState holds the editor's mode flags. It is owned by the Editor and
// changed only by its Update.
type EditorState struct {
	// Draw the four quadrant views instead of the single perspective view.
	QuadView bool
	// Arrow, Shift and Ctrl keys translate the selection when true and
	// rotate it when false.
	ChangeTranslation bool
}

func NewEditorState() EditorState {
	return EditorState{
		QuadView:          false,
		ChangeTranslation: true,
	}
}

// ToggleQuadView flips between the single and the quad layout.
func (s *EditorState) ToggleQuadView() bool {
	s.QuadView = !s.QuadView
	return s.QuadView
}

// ToggleTransformMode flips between translation and rotation.
func (s *EditorState) ToggleTransformMode() bool {
	s.ChangeTranslation = !s.ChangeTranslation
	return s.ChangeTranslation
}

// TransformMode names the current transform mode for logging.
func (s EditorState) TransformMode() string {
	if s.ChangeTranslation {
		return "translate"
	}
	return "rotate"
}
