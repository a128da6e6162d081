package discord

// Interaction types Discord POSTs to the webhook endpoint.
const (
	InteractionPing         = 1
	InteractionCommand      = 2
	InteractionAutocomplete = 4
)

// Response types the endpoint replies with.
const (
	ResponsePong               = 1
	ResponseChannelMessage     = 4
	ResponseAutocompleteResult = 8
)

// MaxAutocompleteChoices is Discord's per-response choice limit.
const MaxAutocompleteChoices = 25

// Interaction is the inbound webhook envelope. Only the fields this bot
// reads are modeled.
type Interaction struct {
	Type int             `json:"type"`
	Data InteractionData `json:"data"`
}

type InteractionData struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

type Option struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Focused bool   `json:"focused"`
}

// OptionValue returns the value of the named option, or "".
func (d InteractionData) OptionValue(name string) string {
	for _, opt := range d.Options {
		if opt.Name == name {
			return opt.Value
		}
	}
	return ""
}

// FocusedValue returns the value of the option currently being typed.
func (d InteractionData) FocusedValue() string {
	for _, opt := range d.Options {
		if opt.Focused {
			return opt.Value
		}
	}
	return ""
}

type Response struct {
	Type int `json:"type"`
	Data any `json:"data,omitempty"`
}

// MessageData is the payload of a ResponseChannelMessage reply.
type MessageData struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// AutocompleteData is the payload of a ResponseAutocompleteResult reply.
type AutocompleteData struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
