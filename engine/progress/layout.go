package progress

const (
	DefaultProgressHeight  = 25
	DefaultAssistantHeight = 5
	MaxPanelHeight         = 50
	MinPanelHeight         = 5
)

// Layout holds the heights of the progress and assistant panels, as a
// percentage of the screen. At most one panel is at the maximum.
type Layout struct {
	Progress  int `json:"progress"`
	Assistant int `json:"assistant"`
}

func NewLayout() Layout {
	return Layout{Progress: DefaultProgressHeight, Assistant: DefaultAssistantHeight}
}

func clampHeight(h int) int {
	return max(MinPanelHeight, min(MaxPanelHeight, h))
}

// SetProgressHeight resizes the progress panel. Maximizing it while the
// assistant panel is maximized returns the assistant panel to its default.
func (l *Layout) SetProgressHeight(h int) {
	l.Progress = clampHeight(h)
	if l.Progress == MaxPanelHeight && l.Assistant == MaxPanelHeight {
		l.Assistant = DefaultAssistantHeight
	}
}

// SetAssistantHeight mirrors SetProgressHeight for the assistant panel.
func (l *Layout) SetAssistantHeight(h int) {
	l.Assistant = clampHeight(h)
	if l.Assistant == MaxPanelHeight && l.Progress == MaxPanelHeight {
		l.Progress = DefaultProgressHeight
	}
}

// ExpandProgress maximizes the progress panel.
func (l *Layout) ExpandProgress() { l.SetProgressHeight(MaxPanelHeight) }

// ExpandAssistant maximizes the assistant panel.
func (l *Layout) ExpandAssistant() { l.SetAssistantHeight(MaxPanelHeight) }

func (l *Layout) CollapseProgress() { l.Progress = DefaultProgressHeight }

func (l *Layout) CollapseAssistant() { l.Assistant = DefaultAssistantHeight }
