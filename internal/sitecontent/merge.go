package sitecontent

import "slices"

// Document is a possibly partial site content document as stored remotely.
// A nil section or leaf means the field was absent.
type Document struct {
	Global  *GlobalDocument  `json:"global,omitempty"`
	Home    *HomeDocument    `json:"home,omitempty"`
	About   *AboutDocument   `json:"about,omitempty"`
	Contact *ContactDocument `json:"contact,omitempty"`
}

type GlobalDocument struct {
	SiteName    *string      `json:"siteName,omitempty"`
	LogoURL     *string      `json:"logoUrl,omitempty"`
	FooterText  *string      `json:"footerText,omitempty"`
	Navigation  []NavLink    `json:"navigation,omitempty"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty"`
}

type HomeDocument struct {
	HeroTitle      *string     `json:"heroTitle,omitempty"`
	HeroSubtitle   *string     `json:"heroSubtitle,omitempty"`
	HeroBackground *string     `json:"heroBackground,omitempty"`
	CTAPrimary     *string     `json:"ctaPrimary,omitempty"`
	CTASecondary   *string     `json:"ctaSecondary,omitempty"`
	Highlights     []Highlight `json:"highlights,omitempty"`
	SEO            *SEO        `json:"seo,omitempty"`
}

type AboutDocument struct {
	Intro          *string `json:"intro,omitempty"`
	Description    *string `json:"description,omitempty"`
	Mission        *string `json:"mission,omitempty"`
	Vision         *string `json:"vision,omitempty"`
	FounderName    *string `json:"founderName,omitempty"`
	FounderRole    *string `json:"founderRole,omitempty"`
	FounderMessage *string `json:"founderMessage,omitempty"`
	FounderImage   *string `json:"founderImage,omitempty"`
	SEO            *SEO    `json:"seo,omitempty"`

	// ChairmanMessage is the field name used by documents saved before the
	// founder fields existed. FounderMessage wins when both are present.
	ChairmanMessage *string `json:"chairmanMessage,omitempty"`
}

type ContactDocument struct {
	Address        *string `json:"address,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	PhoneSecondary *string `json:"phoneSecondary,omitempty"`
	Email          *string `json:"email,omitempty"`
	WhatsApp       *string `json:"whatsapp,omitempty"`
	MapEmbedURL    *string `json:"mapEmbedUrl,omitempty"`
	SEO            *SEO    `json:"seo,omitempty"`
}

// MergeWithDefaults lays doc over Defaults. Present leaves replace the
// default value whole (lists included); absent leaves and sections keep the
// default. The result never shares memory with doc.
func MergeWithDefaults(doc Document) SiteContent {
	out := Defaults()

	if g := doc.Global; g != nil {
		leaf(&out.Global.SiteName, g.SiteName)
		leaf(&out.Global.LogoURL, g.LogoURL)
		leaf(&out.Global.FooterText, g.FooterText)
		list(&out.Global.Navigation, g.Navigation)
		list(&out.Global.SocialLinks, g.SocialLinks)
	}

	if h := doc.Home; h != nil {
		leaf(&out.Home.HeroTitle, h.HeroTitle)
		leaf(&out.Home.HeroSubtitle, h.HeroSubtitle)
		leaf(&out.Home.HeroBackground, h.HeroBackground)
		leaf(&out.Home.CTAPrimary, h.CTAPrimary)
		leaf(&out.Home.CTASecondary, h.CTASecondary)
		list(&out.Home.Highlights, h.Highlights)
		seo(&out.Home.SEO, h.SEO)
	}

	if a := doc.About; a != nil {
		leaf(&out.About.Intro, a.Intro)
		leaf(&out.About.Description, a.Description)
		leaf(&out.About.Mission, a.Mission)
		leaf(&out.About.Vision, a.Vision)
		leaf(&out.About.FounderName, a.FounderName)
		leaf(&out.About.FounderRole, a.FounderRole)
		leaf(&out.About.FounderMessage, a.ChairmanMessage)
		leaf(&out.About.FounderMessage, a.FounderMessage)
		leaf(&out.About.FounderImage, a.FounderImage)
		seo(&out.About.SEO, a.SEO)
	}

	if c := doc.Contact; c != nil {
		leaf(&out.Contact.Address, c.Address)
		leaf(&out.Contact.Phone, c.Phone)
		leaf(&out.Contact.PhoneSecondary, c.PhoneSecondary)
		leaf(&out.Contact.Email, c.Email)
		leaf(&out.Contact.WhatsApp, c.WhatsApp)
		leaf(&out.Contact.MapEmbedURL, c.MapEmbedURL)
		seo(&out.Contact.SEO, c.SEO)
	}

	return out
}

func leaf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func list[T any](dst *[]T, v []T) {
	if v != nil {
		*dst = slices.Clone(v)
	}
}

func seo(dst *SEO, v *SEO) {
	if v != nil {
		*dst = v.clone()
	}
}
