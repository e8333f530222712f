package i18n

// Strings is the static lookup of user-facing text. The client ships with
// English and Portuguese, matching the web interface.
type Strings struct {
	Title               string
	NewChat             string
	History             string
	NoChats             string
	SignIn              string
	SignOut             string
	Welcome             string
	WelcomeBack         string
	Subtitle            string
	Placeholder         string
	FollowUpPlaceholder string
	Thinking            string
	ConnectionError     string
	Suggestions         []string
}

var table = map[string]Strings{
	"en": {
		Title:               "Citizen Impact",
		NewChat:             "New Chat",
		History:             "History",
		NoChats:             "No chats yet. Start a new one!",
		SignIn:              "Sign In",
		SignOut:             "Sign Out",
		Welcome:             "How can I help you today?",
		WelcomeBack:         "Welcome back, ",
		Subtitle:            "Ask me anything about politics and citizenship",
		Placeholder:         "Ask anything...",
		FollowUpPlaceholder: "Ask a follow up...",
		Thinking:            "AI is thinking...",
		ConnectionError:     "Sorry, a connection error occurred. Please try again.",
		Suggestions: []string{
			"How does the legislative process work?",
			"What are my voting rights?",
			"Explain the role of the Supreme Court",
			"Summarize recent policy changes",
		},
	},
	"pt": {
		Title:               "Citizen Impact",
		NewChat:             "Nova Conversa",
		History:             "Histórico",
		NoChats:             "Nenhuma conversa ainda. Comece uma nova!",
		SignIn:              "Entrar",
		SignOut:             "Sair",
		Welcome:             "Como posso ajudar hoje?",
		WelcomeBack:         "Bem-vindo de volta, ",
		Subtitle:            "Pergunte qualquer coisa sobre política e cidadania",
		Placeholder:         "Pergunte qualquer coisa...",
		FollowUpPlaceholder: "Faça uma pergunta...",
		Thinking:            "IA está pensando...",
		ConnectionError:     "Desculpe, ocorreu um erro de conexão. Tente novamente.",
		Suggestions: []string{
			"Como funciona o processo legislativo?",
			"Quais são meus direitos de voto?",
			"Explique o papel do Supremo Tribunal",
			"Resuma as mudanças recentes na política",
		},
	},
}

// Lookup returns the string table for a language code, falling back to
// English for unknown codes.
func Lookup(lang string) Strings {
	if s, ok := table[lang]; ok {
		return s
	}
	return table["en"]
}
