package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions, matching the virtual-key values of the OS keyboard layer.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_CONTROL   KeyCode = 0x11
	KEY_MENU      KeyCode = 0x12
	KEY_PAUSE     KeyCode = 0x13
	KEY_CAPITAL   KeyCode = 0x14
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_PRIOR     KeyCode = 0x21
	KEY_NEXT      KeyCode = 0x22
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_INSERT    KeyCode = 0x2D
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_1         KeyCode = 0x31
	KEY_2         KeyCode = 0x32
	KEY_3         KeyCode = 0x33
	KEY_4         KeyCode = 0x34
	KEY_5         KeyCode = 0x35
	KEY_6         KeyCode = 0x36
	KEY_7         KeyCode = 0x37
	KEY_8         KeyCode = 0x38
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_NUMPAD0   KeyCode = 0x60
	KEY_NUMPAD1   KeyCode = 0x61
	KEY_NUMPAD2   KeyCode = 0x62
	KEY_NUMPAD3   KeyCode = 0x63
	KEY_NUMPAD4   KeyCode = 0x64
	KEY_NUMPAD5   KeyCode = 0x65
	KEY_NUMPAD6   KeyCode = 0x66
	KEY_NUMPAD7   KeyCode = 0x67
	KEY_NUMPAD8   KeyCode = 0x68
	KEY_NUMPAD9   KeyCode = 0x69
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_F4        KeyCode = 0x73
	KEY_F5        KeyCode = 0x74
	KEY_F6        KeyCode = 0x75
	KEY_F7        KeyCode = 0x76
	KEY_F8        KeyCode = 0x77
	KEY_F9        KeyCode = 0x78
	KEY_F10       KeyCode = 0x79
	KEY_F11       KeyCode = 0x7A
	KEY_F12       KeyCode = 0x7B
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEY_LMENU     KeyCode = 0xA4
	KEY_RMENU     KeyCode = 0xA5
	KEYS_MAX_KEYS KeyCode = 0xFF
)

// sidedKeys maps a left or right modifier to its generic key and the other side.
var sidedKeys = map[KeyCode][2]KeyCode{
	KEY_LSHIFT:   {KEY_SHIFT, KEY_RSHIFT},
	KEY_RSHIFT:   {KEY_SHIFT, KEY_LSHIFT},
	KEY_LCONTROL: {KEY_CONTROL, KEY_RCONTROL},
	KEY_RCONTROL: {KEY_CONTROL, KEY_LCONTROL},
	KEY_LMENU:    {KEY_MENU, KEY_RMENU},
	KEY_RMENU:    {KEY_MENU, KEY_LMENU},
}

// Mouse state structure
type MouseState struct {
	X       int32
	Y       int32
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

// InputState holds current and previous states for keyboard and mouse.
// Previous states are refreshed by Update at the end of every frame, which is
// what makes IsKeyPressed fire once per press.
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState

	events *EventSystem
}

// NewInputState creates an input state. events may be nil.
func NewInputState(events *EventSystem) *InputState {
	LogDebug("Input subsystem initialized.")
	return &InputState{events: events}
}

// Update copies current states to previous states.
func (is *InputState) Update() {
	is.KeyboardPrevious = is.KeyboardCurrent
	is.MousePrevious = is.MouseCurrent
}

// keyboard input
func (is *InputState) IsKeyDown(key KeyCode) bool {
	return is.KeyboardCurrent.Keys[key]
}

func (is *InputState) IsKeyUp(key KeyCode) bool {
	return !is.KeyboardCurrent.Keys[key]
}

func (is *InputState) WasKeyDown(key KeyCode) bool {
	return is.KeyboardPrevious.Keys[key]
}

func (is *InputState) WasKeyUp(key KeyCode) bool {
	return !is.KeyboardPrevious.Keys[key]
}

// IsKeyPressed is edge-triggered: true only on the frame the key went down.
func (is *InputState) IsKeyPressed(key KeyCode) bool {
	return is.KeyboardCurrent.Keys[key] && !is.KeyboardPrevious.Keys[key]
}

// ProcessKey records a key transition. A sided modifier also drives its
// generic key, which stays down while either side is held.
func (is *InputState) ProcessKey(key KeyCode, pressed bool) {
	is.setKey(key, pressed)
	if pair, ok := sidedKeys[key]; ok {
		is.setKey(pair[0], pressed || is.KeyboardCurrent.Keys[pair[1]])
	}
}

func (is *InputState) setKey(key KeyCode, pressed bool) {
	// Only handle this if the state actually changed.
	if is.KeyboardCurrent.Keys[key] == pressed {
		return
	}
	is.KeyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	is.fire(EventContext{
		Type: code,
		Data: &KeyEvent{KeyCode: key},
	})
}

// mouse input
func (is *InputState) IsButtonDown(button Button) bool {
	return is.MouseCurrent.Buttons[button]
}

func (is *InputState) IsButtonUp(button Button) bool {
	return !is.MouseCurrent.Buttons[button]
}

func (is *InputState) WasButtonDown(button Button) bool {
	return is.MousePrevious.Buttons[button]
}

func (is *InputState) GetMousePosition() (int32, int32) {
	return is.MouseCurrent.X, is.MouseCurrent.Y
}

func (is *InputState) GetPreviousMousePosition() (int32, int32) {
	return is.MousePrevious.X, is.MousePrevious.Y
}

func (is *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS || is.MouseCurrent.Buttons[button] == pressed {
		return
	}
	is.MouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	is.fire(EventContext{
		Type: code,
		Data: &MouseEvent{Button: button},
	})
}

func (is *InputState) ProcessMouseMove(x, y int32) {
	if is.MouseCurrent.X == x && is.MouseCurrent.Y == y {
		return
	}
	is.MouseCurrent.X = x
	is.MouseCurrent.Y = y

	is.fire(EventContext{
		Type: EVENT_CODE_MOUSE_MOVED,
		Data: &MouseEvent{PosX: x, PosY: y},
	})
}

func (is *InputState) ProcessMouseWheel(zDelta int8) {
	is.fire(EventContext{
		Type: EVENT_CODE_MOUSE_WHEEL,
		Data: &MouseEvent{Scroll: zDelta},
	})
}

func (is *InputState) fire(context EventContext) {
	if is.events != nil {
		is.events.Fire(context)
	}
}
