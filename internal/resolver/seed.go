package resolver

import "banksentinel/internal/model"

// SeedEntities is the canonical reference set loaded at startup. Reference
// data only, risk logic never depends on this exact list.
func SeedEntities() []model.Entity {
	return []model.Entity{
		{ID: "bank-first-national", Kind: model.EntityBank, DisplayName: "First National Bank", Aliases: model.StringList{"FNB", "First National"}, Tickers: model.StringList{"FNBC"}, RegistryID: "FDIC-4801"},
		{ID: "bank-meridian", Kind: model.EntityBank, DisplayName: "Meridian Trust", Aliases: model.StringList{"Meridian", "Meridian Trust Co"}, Tickers: model.StringList{"MRT"}, RegistryID: "FDIC-5522"},
		{ID: "bank-pacific-commerce", Kind: model.EntityBank, DisplayName: "Pacific Commerce Bank", Aliases: model.StringList{"PacCom", "Pacific Commerce"}, Tickers: model.StringList{"PCB"}, RegistryID: "FDIC-6147"},
		{ID: "regulator-fdic", Kind: model.EntityRegulator, DisplayName: "FDIC", Aliases: model.StringList{"Federal Deposit Insurance Corporation"}},
		{ID: "regulator-occ", Kind: model.EntityRegulator, DisplayName: "OCC", Aliases: model.StringList{"Office of the Comptroller of the Currency", "Comptroller of the Currency"}},
		{ID: "regulator-sec", Kind: model.EntityRegulator, DisplayName: "SEC", Aliases: model.StringList{"Securities and Exchange Commission"}},
		{ID: "regulator-fed", Kind: model.EntityRegulator, DisplayName: "Federal Reserve", Aliases: model.StringList{"the Fed", "Federal Reserve Board"}},
		{ID: "metal-silver", Kind: model.EntityMetal, DisplayName: "Silver", Aliases: model.StringList{"Ag"}, Tickers: model.StringList{"SI"}},
		{ID: "metal-gold", Kind: model.EntityMetal, DisplayName: "Gold", Aliases: model.StringList{"Au"}, Tickers: model.StringList{"GC"}},
		{ID: "exchange-comex", Kind: model.EntityExchange, DisplayName: "COMEX", Aliases: model.StringList{"Commodity Exchange"}},
	}
}
