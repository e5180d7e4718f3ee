package formtype

func brandKitDefinition() *Definition {
	return newDefinition(BrandKit, "Brand Kit", 1, []Step{
		{Title: "Business basics", Fields: []Field{
			{Name: "business_name", Kind: KindString},
			{Name: "industry", Kind: KindString},
			{Name: "founded_year", Kind: KindNumber},
			{Name: "website", Kind: KindString},
		}},
		{Title: "Mission and vision", Fields: []Field{
			{Name: "mission_statement", Kind: KindString},
			{Name: "vision_statement", Kind: KindString},
			{Name: "core_values", Kind: KindStringList},
		}},
		{Title: "Target audience", Fields: []Field{
			{Name: "target_audience", Kind: KindString},
			{Name: "audience_age_range", Kind: KindObject},
			{Name: "audience_locations", Kind: KindStringList},
		}},
		{Title: "Competitors", Fields: []Field{
			{Name: "competitors", Kind: KindStringList},
			{Name: "differentiators", Kind: KindString},
		}},
		{Title: "Brand personality", Fields: []Field{
			{Name: "personality_traits", Kind: KindStringList},
			{Name: "brand_archetype", Kind: KindString},
		}},
		{Title: "Voice and tone", Fields: []Field{
			{Name: "voice_tone", Kind: KindStringList},
			{Name: "words_to_avoid", Kind: KindStringList},
		}},
		{Title: "Colors", Fields: []Field{
			{Name: "primary_colors", Kind: KindStringList},
			{Name: "secondary_colors", Kind: KindStringList},
			{Name: "colors_to_avoid", Kind: KindStringList},
		}},
		{Title: "Typography", Fields: []Field{
			{Name: "font_preferences", Kind: KindStringList},
			{Name: "typography_style", Kind: KindString},
		}},
		{Title: "Logo", Fields: []Field{
			{Name: "has_existing_logo", Kind: KindBool},
			{Name: "logo_url", Kind: KindString},
			{Name: "logo_style", Kind: KindStringList},
		}},
		{Title: "Imagery", Fields: []Field{
			{Name: "imagery_style", Kind: KindStringList},
			{Name: "inspiration_urls", Kind: KindStringList},
		}},
		{Title: "Channels", Fields: []Field{
			{Name: "marketing_channels", Kind: KindStringList},
			{Name: "social_handles", Kind: KindObject},
		}},
		{Title: "Final notes", Fields: []Field{
			{Name: "budget_range", Kind: KindString},
			{Name: "deadline", Kind: KindString},
			{Name: "additional_notes", Kind: KindString},
		}},
	})
}

func productServiceDefinition() *Definition {
	return newDefinition(ProductService, "Product / Service", 1, []Step{
		{Title: "Offering", Fields: []Field{
			{Name: "offering_name", Kind: KindString},
			{Name: "offering_type", Kind: KindString},
		}},
		{Title: "Description", Fields: []Field{
			{Name: "short_description", Kind: KindString},
			{Name: "key_features", Kind: KindStringList},
		}},
		{Title: "Pricing", Fields: []Field{
			{Name: "price_point", Kind: KindNumber},
			{Name: "pricing_model", Kind: KindString},
		}},
		{Title: "Customers", Fields: []Field{
			{Name: "ideal_customer", Kind: KindString},
			{Name: "pain_points", Kind: KindStringList},
		}},
		{Title: "Positioning", Fields: []Field{
			{Name: "unique_selling_points", Kind: KindStringList},
			{Name: "alternatives", Kind: KindStringList},
		}},
		{Title: "Launch", Fields: []Field{
			{Name: "launch_date", Kind: KindString},
			{Name: "launch_channels", Kind: KindStringList},
			{Name: "extra_details", Kind: KindObject},
		}},
	})
}
