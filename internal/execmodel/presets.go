package execmodel

// Presets bundle a (path, gap, slippage, commission) tuple under a
// named cost regime. Each preset constructor below can be handed to any
// of the four entry-order-type models in models.go.

func Frictionless() Preset {
	return Preset{path: PathDeterministic, gap: GapFillAtTrigger, slippage: 0, commission: 0}
}

func Realistic() Preset {
	return Preset{path: PathWorstCase, gap: GapFillAtOpen, slippage: 5, commission: 5}
}

func Hostile() Preset {
	return Preset{path: PathWorstCase, gap: GapFillAtOpen, slippage: 20, commission: 15}
}

func Optimistic() Preset {
	return Preset{path: PathBestCase, gap: GapFillAtTrigger, slippage: 2, commission: 2}
}
