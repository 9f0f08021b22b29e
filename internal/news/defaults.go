package news

import "github.com/abelbrown/clubnews/internal/datekey"

// Fallback values used when the feed omits or blanks a field.
const (
	DefaultCoachName   = "Michel Duek"
	DefaultSidebarDate = "Sábado\n25.9.04 TAR"
)

// DefaultWire is the built-in document served when neither the remote feed
// nor the cache is usable. It must always contain at least one item.
func DefaultWire() WireDocument {
	return WireDocument{
		CoachName:   DefaultCoachName,
		SidebarDate: DefaultSidebarDate,
		News: []WireItem{
			{
				Date:     "Qui 23 Set NTE",
				Category: string(Competitions),
				Title:    "Observação do Botafogo terminada",
				Description: "Artur Neto normalmente faz jogar o Botafogo num estilo 4-4-2 ofensivo e de qualidade.\n\n" +
					"A má classificação do Botafogo não deixa perceber a verdadeira qualidade da equipa.\n\n" +
					"Temos sorte em Vádson, que é o melhor defesa deles, estar lesionado neste momento.",
			},
			{
				Date:        "Qui 23 Set TAR",
				Category:    string(Messages),
				Title:       "Coritiba contrata Maria",
				Description: "O Coritiba anunciou a contratação de Maria. Detalhes adicionais serão divulgados em breve.",
			},
		},
	}
}

const noNewsTitle = "Sem notícias"

// EmptyCategoryPlaceholder stands in for a view whose filters matched nothing.
func EmptyCategoryPlaceholder() Item {
	return Item{
		Date:        datekey.Placeholder,
		Title:       noNewsTitle,
		Description: "Nenhuma notícia nesta categoria.",
		Category:    DefaultCategory,
	}
}

// EmptyDocumentPlaceholder stands in for a document that has no items at all.
func EmptyDocumentPlaceholder() Item {
	return Item{
		Date:        datekey.Placeholder,
		Title:       noNewsTitle,
		Description: "O JSON não contém notícias.",
		Category:    DefaultCategory,
	}
}

// IsPlaceholder reports whether it is one of the synthetic placeholder items.
func IsPlaceholder(it Item) bool {
	return it.Title == noNewsTitle && it.Date == datekey.Placeholder && it.SortKey == nil
}
