package desktop

import (
	"strconv"
	"strings"
)

const (
	KeyType          = "Type"
	KeyName          = "Name"
	KeyComment       = "Comment"
	KeyExec          = "Exec"
	KeyIcon          = "Icon"
	KeyCategories    = "Categories"
	KeyStartupNotify = "StartupNotify"
	KeyTerminal      = "Terminal"
)

// DefaultLayout is the key order used when an Entry sets no Layout.
var DefaultLayout = []string{
	KeyType,
	KeyName,
	KeyComment,
	KeyExec,
	KeyIcon,
	KeyCategories,
	KeyStartupNotify,
	KeyTerminal,
}

// Entry is a freedesktop application launcher. Version always comes first,
// then the keys named in Layout. StartupNotify is omitted when nil and
// Categories when empty.
type Entry struct {
	Name          string
	Comment       string
	Exec          string
	Icon          string
	Categories    []string
	Terminal      bool
	StartupNotify *bool
	Layout        []string
}

func (e *Entry) value(key string) (string, bool) {
	switch key {
	case KeyType:
		return "Application", true
	case KeyName:
		return e.Name, true
	case KeyComment:
		return e.Comment, true
	case KeyExec:
		return e.Exec, true
	case KeyIcon:
		return e.Icon, true
	case KeyCategories:
		if len(e.Categories) == 0 {
			return "", false
		}
		return strings.Join(e.Categories, ";") + ";", true
	case KeyStartupNotify:
		if e.StartupNotify == nil {
			return "", false
		}
		return strconv.FormatBool(*e.StartupNotify), true
	case KeyTerminal:
		return strconv.FormatBool(e.Terminal), true
	}
	return "", false
}

func (e *Entry) Render() string {
	layout := e.Layout
	if len(layout) == 0 {
		layout = DefaultLayout
	}

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Version=1.0\n")
	for _, key := range layout {
		if v, ok := e.value(key); ok {
			b.WriteString(key + "=" + v + "\n")
		}
	}

	return b.String()
}

func Bool(v bool) *bool {
	return &v
}
