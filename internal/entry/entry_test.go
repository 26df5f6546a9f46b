package entry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesWordsAndInitials(t *testing.T) {
	e, err := New(Raw{Name: "Visual Studio Code", Target: "code", Kind: KindApplication})
	require.NoError(t, err)

	assert.Equal(t, []string{"visual", "studio", "code"}, e.Words)
	assert.Equal(t, "vsc", e.Initials)
	assert.Equal(t, "visual studio code", e.Folded)
	assert.Equal(t, Application{Command: "code"}, e.Payload)
}

func TestNew_KeywordsExtendWords(t *testing.T) {
	e := MustNew(Raw{
		Name:     "Restart",
		Target:   string(ActionRestart),
		Kind:     KindSystemAction,
		Keywords: []string{"reboot", "Restart now"},
	})

	assert.Equal(t, []string{"restart", "reboot", "now"}, e.Words)
	assert.Equal(t, SystemAction{Action: ActionRestart}, e.Payload)
}

func TestNew_IDIsStableAndKindScoped(t *testing.T) {
	a := MustNew(Raw{Name: "Firefox", Target: "firefox", Kind: KindApplication})
	b := MustNew(Raw{Name: "Firefox Web Browser", Target: "firefox", Kind: KindApplication})
	c := MustNew(Raw{Name: "firefox", Target: "firefox", Kind: KindFile})

	assert.Equal(t, a.ID, b.ID, "same kind and target yield the same id")
	assert.NotEqual(t, a.ID, c.ID)
	assert.False(t, a.ID.IsZero())

	parsed, err := ParseID(a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, a.ID, parsed)
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New(Raw{Name: "  ", Target: "x", Kind: KindFile})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = New(Raw{Name: "x", Target: "x", Kind: Kind(99)})
	assert.Error(t, err)

	_, err = New(Raw{Name: "x", Target: "x", Kind: KindFile, Payload: Application{Command: "x"}})
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"VLC Media Player", []string{"vlc", "media", "player"}},
		{"VSCode", []string{"vs", "code", "vscode"}},
		{"gnome-terminal", []string{"gnome", "terminal"}},
		{"Café Crème", []string{"cafe", "creme"}},
		{"LibreOffice Calc 7.6", []string{"libre", "office", "libreoffice", "calc", "7", "6"}},
		{"a a a", []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.name))
		})
	}
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "vmp", Initials(Segments("VLC Media Player")))
	assert.Equal(t, "vc", Initials(Segments("VSCode")))
	assert.Empty(t, Initials(Segments("Firefox")))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "visual studio", Normalize("  Visual   STUDIO \t"))
	assert.Equal(t, "resume", Normalize("Résumé"))
	assert.Empty(t, Normalize("   "))
}

func TestKind_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[string]Kind{"k": KindWebSearch})
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"web_search"}`, string(data))

	var back map[string]Kind
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, KindWebSearch, back["k"])

	_, err = ParseKind("widget")
	assert.Error(t, err)
}

func TestQueryWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"visual-studio", []string{"visual", "studio"}},
		{"notepad++", []string{"notepad"}},
		{"at&t", []string{"at", "t"}},
		{"vs code", []string{"vs", "code"}},
		{"++", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QueryWords(tt.in), tt.in)
	}
}
