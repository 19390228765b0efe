package prompt

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/scriptkit/launchercore/pkg/launcherrors"
)

// Type is the wire discriminator carried by every JSONL line (// "JSONL protocol"). Unrecognised values are dropped by the reader, never
// treated as a parse failure that kills the session.
type Type string

const (
	// Prompts: script -> app, app replies exactly once per id.
	TypeArg    Type = "arg"
	TypeEditor Type = "editor"
	TypeDiv    Type = "div"
	TypeFields Type = "fields"
	TypeForm   Type = "form"
	TypePath   Type = "path"
	TypeDrop   Type = "drop"
	TypeHotkey Type = "hotkey"
	TypeTerm   Type = "term"
	TypeChat   Type = "chat"
	TypeMic    Type = "mic"
	TypeWebcam Type = "webcam"

	// Responses: app -> script.
	TypeSubmit Type = "submit"
	TypeUpdate Type = "update"
	TypeCancel Type = "cancel"

	// Window control: script -> app, no reply.
	TypeShow           Type = "show"
	TypeHide           Type = "hide"
	TypeSetPosition    Type = "setPosition"
	TypeSetSize        Type = "setSize"
	TypeSetAlwaysOnTop Type = "setAlwaysOnTop"
	TypeSetPanel       Type = "setPanel"
	TypeSetPrompt      Type = "setPrompt"
	TypeSetActions     Type = "setActions"

	// State queries: correlated both directions.
	TypeGetState               Type = "getState"
	TypeStateResult            Type = "stateResult"
	TypeGetSelectedText        Type = "getSelectedText"
	TypeSelectedText           Type = "selectedText"
	TypeCaptureScreenshot      Type = "captureScreenshot"
	TypeScreenshotResult       Type = "screenshotResult"
	TypeGetWindowBounds        Type = "getWindowBounds"
	TypeWindowBounds           Type = "windowBounds"
	TypeClipboardHistory       Type = "clipboardHistory"
	TypeClipboardHistoryResult Type = "clipboardHistoryResult"

	// Scriptlet ops.
	TypeRunScriptlet    Type = "runScriptlet"
	TypeGetScriptlets   Type = "getScriptlets"
	TypeScriptletList   Type = "scriptletList"
	TypeScriptletResult Type = "scriptletResult"

	// Terminal lifecycle.
	TypeExit Type = "exit"

	// actionTriggered is emitted by the app when an action with hasAction
	// is chosen from a prompt's actions menu.
	TypeActionTriggered Type = "actionTriggered"
)

// PromptVariants is the set of Type values that occupy the "current
// prompt" slot of the view model (state machine).
var PromptVariants = map[Type]bool{
	TypeArg: true, TypeEditor: true, TypeDiv: true, TypeFields: true,
	TypeForm: true, TypePath: true, TypeDrop: true, TypeHotkey: true,
	TypeTerm: true, TypeChat: true, TypeMic: true, TypeWebcam: true,
}

// Action is a single entry in a prompt's attached actions menu.
type Action struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Shortcut string `json:"shortcut,omitempty"`
	HasAction bool  `json:"hasAction,omitempty"`
	Close    bool   `json:"close,omitempty"`
	Value    Value  `json:"value,omitempty"`
}

// Field describes one input in a "fields"/"form" prompt.
type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Type        string `json:"type,omitempty"`
	Value       Value  `json:"value,omitempty"`
}

// Message is the decoded form of one JSONL line. Type selects which of the
// optional fields are meaningful; unused fields are simply zero. A flat
// struct keyed by a discriminator field fits JSON better than a
// Go-level closed union, because JSON itself is not closed — the
// discriminator IS the type.
type Message struct {
	Type Type   `json:"type"`
	ID   string `json:"id,omitempty"`

	// Prompt fields.
	Placeholder string  `json:"placeholder,omitempty"`
	Hint        string  `json:"hint,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Actions     []Action `json:"actions,omitempty"`
	Dismissable bool    `json:"dismissable,omitempty"`

	// Response fields.
	Value Value `json:"value,omitempty"`

	// Window control fields.
	X       *int   `json:"x,omitempty"`
	Y       *int   `json:"y,omitempty"`
	Width   *int   `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
	OnTop   *bool  `json:"onTop,omitempty"`
	Panel   *bool  `json:"panel,omitempty"`
	Open    *bool  `json:"open,omitempty"`

	// Terminal lifecycle.
	Code *int `json:"code,omitempty"`

	// Scriptlet ops.
	ScriptletFile string `json:"scriptletFile,omitempty"`
	ScriptletName string `json:"scriptletName,omitempty"`

	// actionTriggered.
	ActionID string `json:"actionId,omitempty"`
}

// MarshalJSON drops the "value" field entirely when it is Absent, instead
// of emitting "value":null — encoding/json's omitempty never omits a
// struct field, so without this the wire form could not distinguish a
// missing value from an explicit JSON null (spec §9).
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	aux := struct {
		alias
		Value *Value `json:"value,omitempty"`
	}{alias: alias(m)}
	if m.Value.Present {
		v := m.Value
		aux.Value = &v
	}
	return json.Marshal(aux)
}

// Parse decodes one JSONL line. A line that is not valid UTF-8, is not
// well-formed JSON, or has no "type" field returns (nil, err) with err
// classified as launcherrors.Parse; the caller logs it and goes on to the
// next line, so a bad line never ends the session.
func Parse(line []byte) (*Message, error) {
	if !utf8.Valid(line) {
		return nil, launcherrors.New(launcherrors.Parse, "prompt", "JSONL line is not valid UTF-8")
	}
	var probe struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, launcherrors.Wrap(launcherrors.Parse, "prompt", "malformed JSONL line", err)
	}
	if len(probe.Type) == 0 {
		return nil, launcherrors.New(launcherrors.Parse, "prompt", "missing type field")
	}
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, launcherrors.Wrap(launcherrors.Parse, "prompt", "malformed message body", err)
	}
	return &msg, nil
}

// Serialize renders a Message back to a single JSONL line (no trailing
// newline; callers append '\n' when writing to stdin/stdout, matching the
// codexrpc writeJSONL convention).
func Serialize(msg *Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("prompt: nil message")
	}
	return json.Marshal(msg)
}
