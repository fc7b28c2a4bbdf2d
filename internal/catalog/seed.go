package catalog

import (
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
)

// Built-in menu names.
const (
	MenuSmall = "small"
	MenuLarge = "large"
)

// BuiltIn returns one of the embedded menus by name.
func BuiltIn(name string) (Menu, error) {
	switch name {
	case MenuSmall:
		return SmallMenu(), nil
	case MenuLarge:
		return LargeMenu(), nil
	default:
		return Menu{}, pkgerrors.New(pkgerrors.CodeNotFound, "unknown built-in menu").
			WithDetails(map[string]any{"menu": name})
	}
}

// BuiltInMenus returns every embedded menu, used by the database seeder.
func BuiltInMenus() []Menu {
	return []Menu{SmallMenu(), LargeMenu()}
}

// SmallMenu is the five-item baseline menu.
func SmallMenu() Menu {
	return Menu{
		Name: MenuSmall,
		Items: []MenuItem{
			{
				SKU:            "DON001",
				Name:           "Pumpkin Spice Iced Doughnut",
				Category:       "donuts",
				BasePriceCents: 129,
				Aliases:        []string{"pumpkin spice donut", "pumpkin donut", "ps donut", "pumpkin iced"},
			},
			{
				SKU:            "DON002",
				Name:           "Chocolate Iced Doughnut",
				Category:       "donuts",
				BasePriceCents: 109,
				Aliases:        []string{"chocolate donut", "choc donut", "chocolate glazed"},
				Modifiers:      []string{"sprinkles"},
				ModifierSynonyms: map[string]string{
					"with sprinkles": "sprinkles",
					"sprinkled":      "sprinkles",
				},
			},
			{
				SKU:            "DON003",
				Name:           "Raspberry Filled Doughnut",
				Category:       "donuts",
				BasePriceCents: 109,
				Aliases:        []string{"raspberry donut", "raspberry filled", "rasp filled"},
			},
			{
				SKU:            "COF001",
				Name:           "Regular Brewed Coffee",
				Category:       "coffee",
				BasePriceCents: 179,
				Aliases:        []string{"coffee", "regular coffee", "brewed coffee", "black coffee"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 30, "large": 60},
				Modifiers:      []string{"cream", "sugar", "milk"},
				ModifierSynonyms: map[string]string{
					"with cream": "cream",
					"creamer":    "cream",
					"sweet":      "sugar",
				},
			},
			{
				SKU:            "COF002",
				Name:           "Pumpkin Spice Latte",
				Category:       "coffee",
				BasePriceCents: 459,
				Aliases:        []string{"pumpkin spice latte", "psl", "pumpkin latte", "ps latte"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 50, "large": 100},
				Modifiers:      []string{"extra shot", "whip", "no whip", "almond milk", "oat milk"},
				ModifierSynonyms: map[string]string{
					"whipped cream":    "whip",
					"no whipped cream": "no whip",
				},
			},
		},
		SizeSynonyms: map[string]string{
			"small": "small", "s": "small", "sm": "small", "regular": "small",
			"medium": "medium", "m": "medium", "med": "medium",
			"large": "large", "l": "large", "lg": "large", "big": "large",
		},
		DefaultSizes: map[string]string{
			"donuts": "regular",
			"coffee": "medium",
		},
	}
}

// LargeMenu is the eighteen-item menu with denser, overlapping vocabulary.
func LargeMenu() Menu {
	return Menu{
		Name: MenuLarge,
		Items: []MenuItem{
			{
				SKU:            "DON001",
				Name:           "Pumpkin Spice Iced Doughnut",
				Category:       "donuts",
				BasePriceCents: 129,
				Aliases: []string{
					"pumpkin spice donut", "pumpkin donut", "ps donut", "pumpkin iced",
					"pumpkin spice", "pumpkin glazed", "ps iced",
				},
			},
			{
				SKU:            "DON002",
				Name:           "Pumpkin Spice Cake Doughnut",
				Category:       "donuts",
				BasePriceCents: 129,
				Aliases: []string{
					"pumpkin cake donut", "pumpkin cake", "ps cake", "pumpkin spice cake",
					"cake donut pumpkin",
				},
			},
			{
				SKU:            "DON003",
				Name:           "Old Fashioned Doughnut",
				Category:       "donuts",
				BasePriceCents: 129,
				Aliases: []string{
					"old fashioned", "old fashioned donut", "old fashioned doughnut",
					"old fashion", "plain cake donut",
				},
			},
			{
				SKU:            "DON004",
				Name:           "Chocolate Iced Doughnut",
				Category:       "donuts",
				BasePriceCents: 109,
				Aliases: []string{
					"chocolate donut", "choc donut", "chocolate glazed", "chocolate iced",
					"choc iced", "chocolate", "choc",
				},
				Modifiers: []string{"sprinkles"},
				ModifierSynonyms: map[string]string{
					"with sprinkles":    "sprinkles",
					"sprinkled":         "sprinkles",
					"rainbow sprinkles": "sprinkles",
					"colored sprinkles": "sprinkles",
				},
			},
			{
				SKU:            "DON005",
				Name:           "Raspberry Filled Doughnut",
				Category:       "donuts",
				BasePriceCents: 109,
				Aliases: []string{
					"raspberry donut", "raspberry filled", "rasp filled", "raspberry jelly",
					"raspberry jam", "rasp", "raspberry",
				},
			},
			{
				SKU:            "DON006",
				Name:           "Blueberry Cake Doughnut",
				Category:       "donuts",
				BasePriceCents: 109,
				Aliases:        []string{"blueberry donut", "blueberry cake", "blueberry", "blueberry cake donut"},
			},
			{
				SKU:            "DON007",
				Name:           "Strawberry Iced Doughnut with Sprinkles",
				Category:       "donuts",
				BasePriceCents: 109,
				Aliases: []string{
					"strawberry donut", "strawberry iced", "strawberry glazed", "strawberry",
					"strawberry with sprinkles", "strawberry sprinkled",
				},
				Modifiers: []string{"sprinkles"},
				ModifierSynonyms: map[string]string{
					"with sprinkles": "sprinkles",
					"sprinkled":      "sprinkles",
				},
			},
			{
				SKU:            "DON008",
				Name:           "Lemon Filled Doughnut",
				Category:       "donuts",
				BasePriceCents: 109,
				Aliases:        []string{"lemon donut", "lemon filled", "lemon jelly", "lemon jam", "lemon"},
			},
			{
				SKU:            "DON009",
				Name:           "Doughnut Holes",
				Category:       "donuts",
				BasePriceCents: 399,
				Aliases:        []string{"donut holes", "donut holes dozen", "holes", "munchkins", "donut munchkins"},
			},
			{
				SKU:            "COF001",
				Name:           "Pumpkin Spice Coffee",
				Category:       "coffee",
				BasePriceCents: 259,
				Aliases:        []string{"pumpkin spice coffee", "ps coffee", "pumpkin coffee", "pumpkin brew"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 30, "large": 60},
				Modifiers:      []string{"cream", "sugar", "milk", "extra shot"},
				ModifierSynonyms: map[string]string{
					"with cream": "cream",
					"creamer":    "cream",
					"sweet":      "sugar",
				},
			},
			{
				SKU:            "COF002",
				Name:           "Pumpkin Spice Latte",
				Category:       "coffee",
				BasePriceCents: 459,
				Aliases:        []string{"pumpkin spice latte", "psl", "pumpkin latte", "ps latte"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 50, "large": 100},
				Modifiers:      []string{"extra shot", "whip", "no whip", "almond milk", "oat milk"},
				ModifierSynonyms: map[string]string{
					"whipped cream":    "whip",
					"no whipped cream": "no whip",
				},
			},
			{
				SKU:            "COF003",
				Name:           "Regular Brewed Coffee",
				Category:       "coffee",
				BasePriceCents: 179,
				Aliases: []string{
					"coffee", "regular coffee", "brewed coffee", "black coffee", "regular",
					"house coffee", "drip coffee",
				},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 30, "large": 60},
				Modifiers:      []string{"cream", "sugar", "milk"},
				ModifierSynonyms: map[string]string{
					"with cream": "cream",
					"creamer":    "cream",
					"sweet":      "sugar",
				},
			},
			{
				SKU:            "COF004",
				Name:           "Decaf Brewed Coffee",
				Category:       "coffee",
				BasePriceCents: 179,
				Aliases:        []string{"decaf", "decaf coffee", "decaffeinated", "decaf brewed"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 30, "large": 60},
				Modifiers:      []string{"cream", "sugar", "milk"},
				ModifierSynonyms: map[string]string{
					"with cream": "cream",
					"creamer":    "cream",
					"sweet":      "sugar",
				},
			},
			{
				SKU:            "COF005",
				Name:           "Latte",
				Category:       "coffee",
				BasePriceCents: 349,
				Aliases:        []string{"latte", "cafe latte", "coffee latte"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 40, "large": 80},
				Modifiers:      []string{"extra shot", "decaf", "almond milk", "oat milk", "skim milk", "whole milk"},
				ModifierSynonyms: map[string]string{
					"almond": "almond milk",
					"oat":    "oat milk",
					"skim":   "skim milk",
				},
			},
			{
				SKU:            "COF006",
				Name:           "Cappuccino",
				Category:       "coffee",
				BasePriceCents: 349,
				Aliases:        []string{"cappuccino", "capp", "cappucino"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 40, "large": 80},
				Modifiers:      []string{"extra shot", "decaf", "almond milk", "oat milk", "skim milk"},
				ModifierSynonyms: map[string]string{
					"almond": "almond milk",
					"oat":    "oat milk",
					"skim":   "skim milk",
				},
			},
			{
				SKU:            "COF007",
				Name:           "Caramel Macchiato",
				Category:       "coffee",
				BasePriceCents: 349,
				Aliases:        []string{"caramel macchiato", "caramel mac", "caramel mach", "macchiato"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 40, "large": 80},
				Modifiers:      []string{"extra shot", "decaf", "almond milk", "oat milk", "extra caramel"},
				ModifierSynonyms: map[string]string{
					"almond": "almond milk",
					"oat":    "oat milk",
				},
			},
			{
				SKU:            "COF008",
				Name:           "Mocha Latte",
				Category:       "coffee",
				BasePriceCents: 349,
				Aliases:        []string{"mocha", "mocha latte", "chocolate latte", "choc latte"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 40, "large": 80},
				Modifiers:      []string{"extra shot", "decaf", "almond milk", "oat milk", "whip", "no whip"},
				ModifierSynonyms: map[string]string{
					"almond":        "almond milk",
					"oat":           "oat milk",
					"whipped cream": "whip",
				},
			},
			{
				SKU:            "COF009",
				Name:           "Caramel Mocha Latte",
				Category:       "coffee",
				BasePriceCents: 349,
				Aliases:        []string{"caramel mocha", "caramel mocha latte", "caramel choc latte"},
				SizeDeltaCents: map[string]int64{"small": 0, "medium": 40, "large": 80},
				Modifiers:      []string{"extra shot", "decaf", "almond milk", "oat milk", "whip", "no whip"},
				ModifierSynonyms: map[string]string{
					"almond":        "almond milk",
					"oat":           "oat milk",
					"whipped cream": "whip",
				},
			},
		},
		SizeSynonyms: map[string]string{
			"small": "small", "s": "small", "sm": "small", "regular": "small", "short": "small",
			"medium": "medium", "m": "medium", "med": "medium", "grande": "medium",
			"large": "large", "l": "large", "lg": "large", "big": "large", "venti": "large",
			"extra large": "large", "xl": "large", "x-large": "large",
		},
		DefaultSizes: map[string]string{
			"donuts": "regular",
			"coffee": "medium",
		},
	}
}
