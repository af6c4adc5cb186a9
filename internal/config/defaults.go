package config

// Default returns a configuration that crawls the public SEACE listing.
func Default() Config {
	var c Config

	c.App.Host = "0.0.0.0"
	c.App.Port = 8000
	c.App.DataDir = "."
	c.App.MaxSessions = 2
	c.App.QueueTimeoutSeconds = 30
	c.App.CrawlTimeoutSeconds = 900

	c.Logging.Level = "info"

	c.Auth.TokenEnv = "SEACE_API_TOKEN"

	c.Source.ListingURL = "https://prod6.seace.gob.pe/buscador-publico/contrataciones"
	c.Source.DetailPath = "/buscador-publico/contrataciones/"
	c.Source.CardSelector = "div.bg-fondo-section.rounded-md.p-5.ng-star-inserted"
	c.Source.PageSizeSelector = "mat-select[aria-labelledby*='mat-paginator-page-size-label']"
	c.Source.PageSizeOptionSelector = "mat-option"
	c.Source.NextSelector = "button.mat-mdc-paginator-navigation-next:not([disabled])"
	c.Source.Timezone = "America/Lima"

	c.Browser.Headless = true
	c.Browser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	c.Browser.ViewportWidth = 1920
	c.Browser.ViewportHeight = 1080
	c.Browser.Args = []string{"--no-sandbox", "--disable-gpu", "--disable-dev-shm-usage"}

	c.Crawl.MaxPages = 200
	c.Crawl.EarlyStop = true
	c.Crawl.NavTimeoutSeconds = 90
	c.Crawl.InitialWaitSeconds = 60
	c.Crawl.PageSizeWaitSeconds = 30
	c.Crawl.NextWaitSeconds = 45
	c.Crawl.RefreshTimeoutSeconds = 10
	c.Crawl.SettleMillis = 1500

	c.Enrichment.DetailTimeoutSeconds = 25
	c.Enrichment.BodyWaitSeconds = 10
	c.Enrichment.CellClassPattern = "codCubso"
	c.Enrichment.MinDigits = 13
	c.Enrichment.MaxDigits = 16
	c.Enrichment.RequestsPerSecond = 1
	c.Enrichment.Burst = 2

	c.Taxonomy = DefaultTaxonomy()
	return c
}

func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Statuses: []string{
			"Vigente", "Activo", "En Evaluación", "Adjudicado", "Desierto",
			"Cancelado", "Culminado", "Nulo", "Suspendido", "Consentido", "Contratado",
		},
		// 24 departments plus the Constitutional Province of Callao.
		Departments: []string{
			"AMAZONAS", "ANCASH", "APURIMAC", "AREQUIPA", "AYACUCHO",
			"CAJAMARCA", "CALLAO", "CUSCO", "HUANCAVELICA", "HUANUCO",
			"ICA", "JUNIN", "LA LIBERTAD", "LAMBAYEQUE", "LIMA",
			"LORETO", "MADRE DE DIOS", "MOQUEGUA", "PASCO", "PIURA",
			"PUNO", "SAN MARTIN", "TACNA", "TUMBES", "UCAYALI",
		},
		LocationLabel:    []string{"UBICACION", "LOCATION", "LUGAR", "DEPARTAMENTO"},
		WholeWordRegions: true,

		PublicationLabels:   []string{"Fecha de publicación", "Publicación", "Publication"},
		ScheduleStartLabels: []string{"Inicio", "Desde", "Presentación", "Start", "From", "Submission"},
		ScheduleEndLabels:   []string{"Fin", "Hasta", "Cierre", "Límite", "End", "Until", "Close", "Deadline"},

		TypeMarkers: []Rule{
			{Tag: "Bien", Any: []string{"BIEN", "GOOD"}},
			{Tag: "Servicio", Any: []string{"SERVICIO", "SERVICE"}},
			{Tag: "Obra", Any: []string{"OBRA", "WORK"}},
		},
		ConsultingMarkers: []string{"CONSULTOR", "CONSULT"},
		TypeKeywords: []Rule{
			{Tag: "Obra", Any: []string{
				"MEJORAMIENTO", "CREACION", "REHABILITACION", "CONSTRUCCION",
				"INSTALACION", "RENOVACION", "SALDO DE OBRA",
			}},
			{Tag: "Servicio", Any: []string{
				"MANTENIMIENTO", "ALQUILER", "SEGURIDAD", "LIMPIEZA", "TRANSPORTE",
				"SEGURO", "ARRENDAMIENTO", "CONFECCION", "SERVICIO",
			}},
			{Tag: "Bien", Any: []string{
				"ADQUISICION", "COMPRA", "SUMINISTRO", "VEHICULO", "COMBUSTIBLE",
				"EQUIPO", "MATERIAL", "INSUMO",
			}},
		},
	}
}
