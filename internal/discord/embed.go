package discord

// Colors used across composed embeds.
const (
	ColorGreen       = 0x00ff00
	ColorRed         = 0xff0000
	ColorOrange      = 0xffa500
	ColorBlue        = 0x0000ff
	ColorDeepSkyBlue = 0x00bfff
	ColorDiscordBlue = 0x3498db
)

// DefaultImage is the placeholder shown when a record carries no image.
const DefaultImage = "https://raw.githubusercontent.com/PokeMiners/pogo_assets/master/Images/Pokemon/Addressable%20Assets/pm000.icon.png"

const (
	FooterPokemonGoAPI = "Data provided by Pokemon GO API (github.com/pokemon-go-api/pokemon-go-api)"
	FooterLeekDuck     = "Data from Leek Duck (via ScrapedDuck)"
)

// MaxEmbedsPerMessage is Discord's per-message embed limit.
const MaxEmbedsPerMessage = 10

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// NewEmbed returns an embed with the standard Pokemon GO API footer.
func NewEmbed(title string, color int, description string) Embed {
	return Embed{
		Title:       title,
		Color:       color,
		Description: description,
		Footer:      &EmbedFooter{Text: FooterPokemonGoAPI},
	}
}

func (e *Embed) AddField(name, value string, inline bool) {
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value, Inline: inline})
}

// SetImage sets the main image, falling back to the placeholder.
func (e *Embed) SetImage(url string) {
	if url == "" {
		url = DefaultImage
	}
	e.Image = &EmbedImage{URL: url}
}

// SetThumbnail sets the thumbnail, falling back to the placeholder.
func (e *Embed) SetThumbnail(url string) {
	if url == "" {
		url = DefaultImage
	}
	e.Thumbnail = &EmbedImage{URL: url}
}

func (e *Embed) SetFooter(text string) {
	e.Footer = &EmbedFooter{Text: text}
}
