package quotecache

import "go.uber.org/fx"

var Module = fx.Module("quote.cache",
	fx.Provide(NewQuoteCache),
)
