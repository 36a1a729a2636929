package services

func demoProducts() []ProductInput {
	return []ProductInput{
		{
			Title:         "Smart TV 55\" 4K",
			Description:   "Televisor LED UHD con HDR y apps integradas.",
			Price:         349990,
			ImageURL:      "/images/demo/smart-tv.jpg",
			Stock:         8,
			Categories:    []string{"tecnologia"},
			Subcategories: []string{"tecnologia-tv"},
		},
		{
			Title:         "Audífonos inalámbricos",
			Description:   "Cancelación de ruido y 30 horas de batería.",
			Price:         59990,
			ImageURL:      "/images/demo/audifonos.jpg",
			Stock:         25,
			Categories:    []string{"tecnologia"},
			Subcategories: []string{"tecnologia-audio"},
		},
		{
			Title:         "Notebook 14\"",
			Description:   "16 GB RAM, SSD 512 GB.",
			Price:         699990,
			ImageURL:      "/images/demo/notebook.jpg",
			Stock:         5,
			Categories:    []string{"tecnologia"},
			Subcategories: []string{"tecnologia-computacion"},
		},
		{
			Title:         "Smartphone 128 GB",
			Description:   "Pantalla AMOLED de 6,5 pulgadas.",
			Price:         299990,
			ImageURL:      "/images/demo/smartphone.jpg",
			Stock:         12,
			Categories:    []string{"celulares"},
			Subcategories: []string{"celulares-celulares-telefonos"},
		},
		{
			Title:         "Freidora de aire",
			Description:   "Capacidad de 5 litros, 8 programas.",
			Price:         79990,
			ImageURL:      "/images/demo/freidora.jpg",
			Stock:         0,
			Categories:    []string{"electrohogar-climatizacion"},
			Subcategories: []string{"electrohogar-climatizacion-electrodomesticos-cocina"},
		},
		{
			Title:         "Cama ortopédica para perro",
			Description:   "Espuma viscoelástica, funda lavable.",
			Price:         34990,
			ImageURL:      "/images/demo/cama-perro.jpg",
			Stock:         14,
			Categories:    []string{"mascotas"},
			Subcategories: []string{"mascotas-perros"},
		},
		{
			Title:         "Bicicleta aro 29",
			Description:   "Cuadro de aluminio y frenos de disco.",
			Price:         389990,
			ImageURL:      "/images/demo/bicicleta.jpg",
			Stock:         3,
			Categories:    []string{"deportes-aire-libre"},
			Subcategories: []string{"deportes-aire-libre-ciclismo"},
		},
		{
			Title:         "Set de parrilla a carbón",
			Description:   "Parrilla portátil con accesorios.",
			Price:         89990,
			ImageURL:      "/images/demo/parrilla.jpg",
			Stock:         7,
			Categories:    []string{"jardin-terraza"},
			Subcategories: []string{"jardin-terraza-parrillas"},
		},
	}
}
