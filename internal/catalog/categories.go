// Package catalog holds the storefront's category tree and the pure
// listing, filtering and search logic applied to products.
package catalog

// Subcategory is addressed by the key "<category id>-<subcategory id>".
type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is a top-level catalog category.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

var categories = []Category{
	{
		ID:   "tecnologia",
		Name: "Tecnología",
		Subcategories: []Subcategory{
			{ID: "tv", Name: "TV"},
			{ID: "smartwatch", Name: "Smartwatch y accesorios"},
			{ID: "pc-gamer", Name: "PC gamer"},
			{ID: "fotografia", Name: "Fotografía"},
			{ID: "audio", Name: "Audio"},
			{ID: "computacion", Name: "Computación"},
			{ID: "videojuegos", Name: "Videojuegos"},
			{ID: "smart-home", Name: "Smart home"},
		},
	},
	{
		ID:   "celulares",
		Name: "Celulares",
		Subcategories: []Subcategory{
			{ID: "celulares-telefonos", Name: "Celulares y teléfonos"},
			{ID: "accesorios-celulares", Name: "Accesorios celulares"},
		},
	},
	{
		ID:   "electrohogar-climatizacion",
		Name: "Electrohogar y climatización",
		Subcategories: []Subcategory{
			{ID: "electrodomesticos-cocina", Name: "Electrodomésticos cocina"},
			{ID: "refrigeracion", Name: "Refrigeración"},
			{ID: "cuidado-personal", Name: "Cuidado personal"},
			{ID: "calefaccion", Name: "Calefacción"},
			{ID: "cocina", Name: "Cocina"},
			{ID: "lavado-planchado", Name: "Lavado y Planchado"},
			{ID: "aspirado-limpieza", Name: "Aspirado y limpieza"},
			{ID: "maquinas-cocer", Name: "Máquinas de cocer"},
			{ID: "equipamiento-industrial", Name: "Equipamiento Industrial"},
			{ID: "aire-acondicionado", Name: "Aire acondicionado y ventilación"},
		},
	},
	{
		ID:   "hogar-decoracion",
		Name: "Hogar y decoración",
		Subcategories: []Subcategory{
			{ID: "muebles-organizacion", Name: "Muebles y organización"},
			{ID: "dormitorio", Name: "Dormitorio"},
			{ID: "menaje-cocina", Name: "Menaje cocina y mesa"},
			{ID: "decoracion-iluminacion", Name: "Decoración e iluminación"},
			{ID: "espacios-hogar", Name: "Espacios del hogar"},
			{ID: "bano", Name: "Baño"},
			{ID: "infantil", Name: "Infantil"},
			{ID: "electrodomesticos", Name: "Electrodomésticos"},
		},
	},
	{
		ID:   "belleza",
		Name: "Belleza",
		Subcategories: []Subcategory{
			{ID: "perfumes", Name: "Perfumes"},
			{ID: "cuidado-capilar", Name: "Cuidado capilar y barbería"},
			{ID: "belleza-coreana", Name: "Belleza Coreana"},
			{ID: "cuidado-piel", Name: "Cuidado de la piel"},
			{ID: "dermocosmetica", Name: "Dermocosmética"},
			{ID: "maquillaje", Name: "Maquillaje"},
			{ID: "marcas-exclusivas", Name: "Marcas Exclusivas"},
		},
	},
	{
		ID:   "mujer",
		Name: "Mujer",
		Subcategories: []Subcategory{
			{ID: "ropa-mujer", Name: "Ropa"},
			{ID: "ropa-interior-mujer", Name: "Ropa interior y pijamas"},
			{ID: "ropa-deportiva-mujer", Name: "Ropa deportiva"},
			{ID: "zapatos-mujer", Name: "Zapatos"},
			{ID: "accesorios-mujer", Name: "Accesorios"},
		},
	},
	{
		ID:   "hombre",
		Name: "Hombre",
		Subcategories: []Subcategory{
			{ID: "ropa-hombre", Name: "Ropa"},
			{ID: "ropa-deportiva-hombre", Name: "Ropa deportiva"},
			{ID: "ropa-interior-hombre", Name: "Ropa interior y pijamas"},
			{ID: "zapatos-hombre", Name: "Zapatos"},
			{ID: "cuidado-personal-hombre", Name: "Cuidado personal"},
			{ID: "accesorios-hombre", Name: "Accesorios"},
		},
	},
	{
		ID:   "ninos-jugueteria",
		Name: "Niños y juguetería",
		Subcategories: []Subcategory{
			{ID: "ropa-ninas-0-24", Name: "Ropa de niñas 0-24 meses"},
			{ID: "ropa-ninas-2-8", Name: "Ropa de niñas 2-8 años"},
			{ID: "ropa-ninas-8-16", Name: "Ropa de niñas 8-16 años"},
			{ID: "ropa-ninos-0-24", Name: "Ropa de niños 0-24 meses"},
			{ID: "ropa-ninos-2-8", Name: "Ropa de niños 2-8 años"},
			{ID: "ropa-ninos-8-16", Name: "Ropa de niños 8-16 años"},
			{ID: "zapatos-ninos", Name: "Zapatos"},
			{ID: "juguetes-0-1", Name: "Juguetería 0-1 año"},
			{ID: "juguetes-2-3", Name: "Juguetería 2-3 años"},
			{ID: "juguetes-4-5", Name: "Juguetería 4-5 años"},
			{ID: "juguetes-6-8", Name: "Juguetería 6-8 años"},
			{ID: "juguetes-9-11", Name: "Juguetería 9-11 años"},
			{ID: "juguetes-12", Name: "Juguetería +12 años"},
			{ID: "juegos-exterior", Name: "Juegos de exterior"},
		},
	},
	{
		ID:   "zapatos-zapatillas",
		Name: "Zapatos y Zapatillas",
		Subcategories: []Subcategory{
			{ID: "zapatos-hombre", Name: "Hombre"},
			{ID: "zapatos-mujer", Name: "Mujer"},
			{ID: "zapatos-nino", Name: "Niño"},
		},
	},
	{
		ID:   "jardin-terraza",
		Name: "Jardín y Terraza",
		Subcategories: []Subcategory{
			{ID: "terrazas", Name: "Terrazas"},
			{ID: "piscina", Name: "Mundo piscina"},
			{ID: "juegos-exterior", Name: "Juegos de exterior"},
			{ID: "herramientas-jardin", Name: "Herramientas y maquinaria de jardín"},
			{ID: "parrillas", Name: "Parrillas"},
			{ID: "jardin", Name: "Jardín"},
			{ID: "iluminacion-exterior", Name: "Iluminación Exterior"},
		},
	},
	{
		ID:   "deportes-aire-libre",
		Name: "Deportes y aire libre",
		Subcategories: []Subcategory{
			{ID: "ropa-deportiva-mujer", Name: "Ropa deportiva mujer"},
			{ID: "ropa-deportiva-hombre", Name: "Ropa deportiva hombre"},
			{ID: "ciclismo", Name: "Ciclismo"},
			{ID: "camping", Name: "Camping"},
			{ID: "disciplinas", Name: "Disciplinas"},
			{ID: "fitness", Name: "Fitness"},
			{ID: "electromovilidad", Name: "Electromovilidad"},
			{ID: "vitaminas-suplementos", Name: "Vitaminas y suplementos"},
		},
	},
	{
		ID:   "mascotas",
		Name: "Mascotas",
		Subcategories: []Subcategory{
			{ID: "perros", Name: "Perros"},
			{ID: "gatos", Name: "Gatos"},
			{ID: "aves", Name: "Aves"},
			{ID: "conejo-hamsters", Name: "Conejo y hamsters"},
			{ID: "tortugas-peces-reptiles", Name: "Tortugas - peces y reptiles"},
			{ID: "pet-lovers", Name: "Pet lovers"},
		},
	},
	{
		ID:   "construccion",
		Name: "Construcción",
		Subcategories: []Subcategory{
			{ID: "materiales-construccion", Name: "Materiales de construcción"},
			{ID: "maderas-tableros", Name: "Maderas y tableros"},
			{ID: "ventanas", Name: "Ventanas"},
			{ID: "herramientas-maquinas", Name: "Herramientas y máquinas"},
			{ID: "techos-aislantes", Name: "Techos y aislantes"},
			{ID: "puertas", Name: "Puertas"},
			{ID: "electricidad", Name: "Electricidad"},
		},
	},
	{
		ID:   "ferreteria",
		Name: "Ferretería",
		Subcategories: []Subcategory{
			{ID: "cerraduras-quincalleria", Name: "Cerraduras y quincallería"},
			{ID: "tornillos-clavos-fijaciones", Name: "Tornillos - clavos y fijaciones"},
			{ID: "gasfiteria", Name: "Gasfitería"},
			{ID: "electricidad", Name: "Electricidad"},
			{ID: "seguridad", Name: "Seguridad"},
			{ID: "ropa-proteccion", Name: "Ropa y Protección"},
		},
	},
	{
		ID:   "herramientas-maquinaria",
		Name: "Herramientas y maquinaria",
		Subcategories: []Subcategory{
			{ID: "herramientas-electricas", Name: "Herramientas eléctricas"},
			{ID: "herramientas-manuales", Name: "Herramientas manuales"},
			{ID: "medicion-trazado", Name: "Medición y trazado"},
			{ID: "maquinas-complementos", Name: "Máquinas y complementos"},
			{ID: "jardin", Name: "Jardín"},
			{ID: "organizacion", Name: "Organización"},
			{ID: "herramientas-especialidad", Name: "Herramientas por especialidad"},
			{ID: "arriendo-herramientas", Name: "Arriendo de herramientas"},
		},
	},
	{
		ID:   "pisos-pinturas-terminaciones",
		Name: "Pisos, pinturas y terminaciones",
		Subcategories: []Subcategory{
			{ID: "pisos-revestimientos", Name: "Pisos y revestimientos"},
			{ID: "pinturas", Name: "Pinturas"},
			{ID: "puertas", Name: "Puertas"},
			{ID: "adhesivos-fragues", Name: "Adhesivos y fragües"},
			{ID: "cerraduras-quincalleria", Name: "Cerraduras y quincallería"},
			{ID: "protecciones", Name: "Protecciones"},
			{ID: "ventanas", Name: "Ventanas"},
		},
	},
	{
		ID:   "automotriz",
		Name: "Automotriz",
		Subcategories: []Subcategory{
			{ID: "neumaticos-llantas", Name: "Neumáticos y llantas"},
			{ID: "detailing", Name: "Detailing"},
			{ID: "accesorios-exterior", Name: "Accesorios de exterior"},
			{ID: "accesorios-interior", Name: "Accesorios de interior"},
			{ID: "audio-video", Name: "Audio y video"},
			{ID: "motos", Name: "Motos"},
			{ID: "repuestos-autopartes", Name: "Repuestos y autopartes"},
			{ID: "herramientas-equipos", Name: "Herramientas y equipos mecánicos"},
			{ID: "seguridad", Name: "Seguridad"},
			{ID: "liquidos-lubricantes", Name: "Líquidos y lubricantes"},
		},
	},
	{
		ID:   "otras-categorias",
		Name: "Otras categorías",
		Subcategories: []Subcategory{
			{ID: "supermercado", Name: "Supermercado"},
			{ID: "instrumentos-musicales", Name: "Instrumentos musicales"},
			{ID: "arte-manualidades", Name: "Arte y manualidades"},
			{ID: "libros", Name: "Libros"},
			{ID: "maleteria-viajes", Name: "Maletería y viajes"},
			{ID: "fiestas-celebraciones", Name: "Fiestas y celebraciones"},
			{ID: "tejido-bordado-costura", Name: "Tejido - bordado y costura"},
			{ID: "articulos-libreria", Name: "Artículos de librería"},
			{ID: "salud-insumos-medicos", Name: "Salud e insumos médicos"},
			{ID: "gift-cards", Name: "Gift cards"},
		},
	},
	{
		ID:   "experiencia-servicios",
		Name: "Experiencia y servicios",
		Subcategories: []Subcategory{
			{ID: "moda", Name: "Moda"},
			{ID: "segunda-vida", Name: "Segunda vida"},
			{ID: "novios", Name: "Novios"},
			{ID: "belleza", Name: "Belleza"},
			{ID: "tecnologia", Name: "Tecnología"},
			{ID: "servicios-hogar", Name: "Servicios hogar"},
			{ID: "clubes", Name: "Clubes"},
		},
	},
}

var categoryIndex = func() map[string]int {
	idx := make(map[string]int, len(categories))
	for i, c := range categories {
		idx[c.ID] = i
	}
	return idx
}()

// Categories returns a copy of the category tree in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = cloneCategory(c)
	}
	return out
}

// FindCategory looks a top-level category up by id. The result is a copy.
func FindCategory(id string) (Category, bool) {
	i, ok := categoryIndex[id]
	if !ok {
		return Category{}, false
	}
	return cloneCategory(categories[i]), true
}

// FindSubcategory looks up subID within the category categoryID.
func FindSubcategory(categoryID, subID string) (Category, Subcategory, bool) {
	c, ok := FindCategory(categoryID)
	if !ok {
		return Category{}, Subcategory{}, false
	}
	for _, s := range c.Subcategories {
		if s.ID == subID {
			return c, s, true
		}
	}
	return Category{}, Subcategory{}, false
}

// SubcategoryKey is the value products store in their subcategory list.
func SubcategoryKey(categoryID, subID string) string {
	return categoryID + "-" + subID
}

func cloneCategory(c Category) Category {
	c.Subcategories = append([]Subcategory(nil), c.Subcategories...)
	return c
}
