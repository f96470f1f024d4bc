package sitecontent

// Defaults returns the built-in site copy used wherever the stored document
// is missing a section or a field.
func Defaults() SiteContent {
	return SiteContent{
		Global: Global{
			SiteName:   "Asghar Builders",
			FooterText: "Building trust and creating landmarks across Pakistan since the late 90s.",
			Navigation: []NavLink{
				{Label: "Home", Href: "/"},
				{Label: "Projects", Href: "/projects"},
				{Label: "Gallery", Href: "/gallery"},
				{Label: "About", Href: "/about"},
				{Label: "Contact", Href: "/contact"},
			},
			SocialLinks: []SocialLink{
				{Platform: "facebook", URL: "https://facebook.com/asgharbuilders"},
				{Platform: "instagram", URL: "https://instagram.com/asgharbuilders"},
				{Platform: "linkedin", URL: "https://linkedin.com/company/asgharbuilders"},
			},
		},
		Home: Home{
			HeroTitle:    "Building Trust. Creating Landmarks.",
			HeroSubtitle: "Asghar Builders brings you visionary architectural designs and premium construction quality tailored for elite living and smart investments.",
			CTAPrimary:   "Explore Projects",
			CTASecondary: "Contact Sales Team",
			Highlights: []Highlight{
				{Label: "Years of Experience", Value: "25", Suffix: "+"},
				{Label: "Delivered Projects", Value: "48"},
				{Label: "Ongoing Projects", Value: "12"},
				{Label: "Trusted Clients", Value: "5000", Suffix: "+"},
			},
			SEO: SEO{
				Title:       "Asghar Builders | Premium Real Estate Development",
				Description: "Luxury residential and commercial projects delivered with structural integrity.",
				Keywords:    []string{"real estate", "builders", "karachi", "lahore"},
			},
		},
		About: About{
			Intro:          "Founded in the late 90s, Asghar Builders started with a simple vision: to elevate the standard of living in Pakistan through architectural brilliance and structural integrity.",
			Description:    "Today, we stand as one of the most trusted names in real estate development, having delivered over 40+ high-profile projects ranging from luxury apartments to corporate skyscrapers.",
			Mission:        "To deliver high-value real estate solutions that maximize investor returns while providing homeowners with smart masterpieces.",
			Vision:         "To be the premier catalyst of urban modernization in Pakistan, setting global benchmarks in luxury real estate.",
			FounderName:    "Muhammad Asghar",
			FounderRole:    "Chairman",
			FounderMessage: "We don't just sell plots or apartments; we offer a promise of trust and a secure future for your family.",
			SEO: SEO{
				Title:       "About Asghar Builders",
				Description: "Our story, vision and mission.",
			},
		},
		Contact: Contact{
			Address:        "Suite 502, Platinum Tower, Gulberg III, Lahore, Pakistan.",
			Phone:          "+92 (300) 123-4567",
			PhoneSecondary: "+92 (42) 345-6789",
			Email:          "info@asgharbuilders.com",
			WhatsApp:       "+923001234567",
			SEO: SEO{
				Title:       "Contact Asghar Builders",
				Description: "Reach our sales team for bookings and site visits.",
			},
		},
	}
}
