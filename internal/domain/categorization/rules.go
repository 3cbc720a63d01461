package categorization

// Rule binds a category to the lowercase keyword substrings that select it.
type Rule struct {
	Category Category `json:"categoria"`
	Keywords []string `json:"palavras_chave"`
}

// Rules is an ordered rule table. Earlier rules win over later ones.
type Rules []Rule

// DefaultRules returns a fresh copy of the canonical rule table.
func DefaultRules() Rules {
	return Rules{
		{Category: Comida, Keywords: []string{
			"supermercado", "mercado", "padaria", "restaurante", "lanchonete",
			"ifood", "rappi", "hamburguer", "pizza", "delivery",
		}},
		{Category: Transporte, Keywords: []string{
			"uber", "99", "taxi", "combustível", "posto", "estacionamento",
			"metro", "onibus", "bilhete", "passagem", "pedágio",
		}},
		{Category: Moradia, Keywords: []string{
			"aluguel", "condomínio", "luz", "água", "energia", "internet",
			"telefone", "gás", "energia", "eletropaulo", "sabesp",
		}},
		{Category: Lazer, Keywords: []string{
			"cinema", "netflix", "spotify", "shopping", "parque", "viagem",
			"hotel", "show", "teatro", "musical",
		}},
		{Category: Saude, Keywords: []string{
			"farmacia", "drogaria", "médico", "hospital", "plano de saúde",
			"academia", "clinica", "dentista",
		}},
		{Category: Educacao, Keywords: []string{
			"escola", "faculdade", "curso", "livraria", "material escolar",
			"universidade", "mensalidade",
		}},
		{Category: Investimentos, Keywords: []string{
			"rendimento", "dividendo", "aplicação", "tesouro", "ação", "fii",
			"investimento", "cdb", "lci",
		}},
		{Category: Receita, Keywords: []string{
			"salário", "pagamento", "transferência recebida", "depósito", "rendimento",
		}},
	}
}

// Clone returns a deep copy so callers can extend a table without touching the original.
func (r Rules) Clone() Rules {
	out := make(Rules, len(r))
	for i, rule := range r {
		out[i] = Rule{Category: rule.Category, Keywords: append([]string(nil), rule.Keywords...)}
	}
	return out
}

// KeywordsFor returns the keyword set of the first rule for c.
func (r Rules) KeywordsFor(c Category) []string {
	for _, rule := range r {
		if rule.Category == c {
			return append([]string(nil), rule.Keywords...)
		}
	}
	return nil
}
