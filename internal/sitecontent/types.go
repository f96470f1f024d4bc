package sitecontent

import "slices"

// NavLink is a navigation entry in the site header.
type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// SocialLink points at one of the developer's social profiles.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Highlight is a headline metric shown on the home page, e.g. "25" + "+".
type Highlight struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Suffix string `json:"suffix"`
}

// SEO holds per-page search metadata.
type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

type Global struct {
	SiteName    string       `json:"siteName"`
	LogoURL     string       `json:"logoUrl"`
	FooterText  string       `json:"footerText"`
	Navigation  []NavLink    `json:"navigation"`
	SocialLinks []SocialLink `json:"socialLinks"`
}

type Home struct {
	HeroTitle      string      `json:"heroTitle"`
	HeroSubtitle   string      `json:"heroSubtitle"`
	HeroBackground string      `json:"heroBackground"`
	CTAPrimary     string      `json:"ctaPrimary"`
	CTASecondary   string      `json:"ctaSecondary"`
	Highlights     []Highlight `json:"highlights"`
	SEO            SEO         `json:"seo"`
}

type About struct {
	Intro          string `json:"intro"`
	Description    string `json:"description"`
	Mission        string `json:"mission"`
	Vision         string `json:"vision"`
	FounderName    string `json:"founderName"`
	FounderRole    string `json:"founderRole"`
	FounderMessage string `json:"founderMessage"`
	FounderImage   string `json:"founderImage"`
	SEO            SEO    `json:"seo"`
}

type Contact struct {
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	PhoneSecondary string `json:"phoneSecondary"`
	Email          string `json:"email"`
	WhatsApp       string `json:"whatsapp"`
	MapEmbedURL    string `json:"mapEmbedUrl"`
	SEO            SEO    `json:"seo"`
}

// SiteContent is the singleton document holding site-wide copy.
type SiteContent struct {
	Global  Global  `json:"global"`
	Home    Home    `json:"home"`
	About   About   `json:"about"`
	Contact Contact `json:"contact"`
}

// Clone returns a deep copy of c.
func (c SiteContent) Clone() SiteContent {
	out := c
	out.Global.Navigation = slices.Clone(c.Global.Navigation)
	out.Global.SocialLinks = slices.Clone(c.Global.SocialLinks)
	out.Home.Highlights = slices.Clone(c.Home.Highlights)
	out.Home.SEO = c.Home.SEO.clone()
	out.About.SEO = c.About.SEO.clone()
	out.Contact.SEO = c.Contact.SEO.clone()
	return out
}

func (s SEO) clone() SEO {
	s.Keywords = slices.Clone(s.Keywords)
	return s
}
