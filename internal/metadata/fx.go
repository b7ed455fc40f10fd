package metadata

import "go.uber.org/fx"

var Module = fx.Module("metadata",
	fx.Provide(Provide),
)
