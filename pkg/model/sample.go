package model

import (
	"fmt"
	"time"
)

// SampleCases returns the built-in dataset used when nothing has been stored yet.
// Every call returns fresh values.
func SampleCases() []Case {
	case002 := sampleNodes("case002")
	case002 = append(case002, Person{
		ID:       "case002-4",
		Type:     NodeTypePerson,
		Position: Position{X: 250, Y: 350},
		Data: PersonData{
			Name:     "Empresa X Rep.",
			PhotoURL: "https://picsum.photos/seed/case002EX/80/80",
			Role:     "Representante Legal",
			CPF:      "333.444.555-66",
		},
	})

	return []Case{
		{
			ID:               "case-001",
			Title:            "Investigação Grupo Empresarial ABC",
			Subtitle:         "Análise de estrutura societária e relacionamentos entre executivos.",
			Status:           StatusActive,
			Client:           "Ministério Público",
			LeadInvestigator: "Dr. Silva",
			CreationDate:     mustTime("2025-06-25T10:00:00Z"),
			LastModified:     mustTime("2025-06-28T14:30:00Z"),
			Description:      "Investigação sobre possíveis irregularidades fiscais e societárias no Grupo ABC. Foco nos principais diretores e suas conexões.",
			Tags:             []string{"Fraude Fiscal", "Societário", "Due Diligence"},
			Graph:            Graph{Nodes: sampleNodes("case001"), Edges: sampleEdges("case001")},
		},
		{
			ID:               "case-002",
			Title:            "Due Diligence Fusão XYZ",
			Subtitle:         "Mapeamento de stakeholders e análise de conflitos de interesse.",
			Status:           StatusActive,
			Client:           "Consultoria Jurídica Alfa",
			LeadInvestigator: "Dra. Santos",
			CreationDate:     mustTime("2025-05-10T09:00:00Z"),
			LastModified:     mustTime("2025-06-20T11:00:00Z"),
			Description:      "Análise prévia à fusão das empresas X, Y e Z, com foco em identificar potenciais conflitos de interesse e riscos reputacionais dos envolvidos.",
			Tags:             []string{"Fusões e Aquisições", "Compliance", "Risco Reputacional"},
			Graph:            Graph{Nodes: case002, Edges: sampleEdges("case002")},
		},
		{
			ID:               "case-003",
			Title:            "Análise de Concorrência Setor Tech",
			Subtitle:         "Identificação de principais players e suas interconexões no mercado de tecnologia.",
			Status:           StatusCompleted,
			Client:           "Fundo de Investimento Beta",
			LeadInvestigator: "Sr. Oliveira",
			CreationDate:     mustTime("2025-03-01T11:00:00Z"),
			LastModified:     mustTime("2025-04-15T16:00:00Z"),
			Description:      "Estudo de mercado para identificar os principais influenciadores, investidores e relações estratégicas no setor de tecnologia.",
			Tags:             []string{"Inteligência de Mercado", "Tecnologia", "Investimento"},
			Graph:            Graph{Nodes: sampleNodes("case003"), Edges: sampleEdges("case003")},
		},
		{
			ID:           "case-004",
			Title:        "Caso Teste Simples",
			Subtitle:     "Um caso com dados mínimos para testes.",
			Status:       StatusPending,
			CreationDate: mustTime("2025-06-29T12:00:00Z"),
			LastModified: mustTime("2025-06-29T12:00:00Z"),
			Graph: Graph{
				Nodes: []Person{{
					ID:       "case004-1",
					Type:     NodeTypePerson,
					Position: Position{X: 50, Y: 50},
					Data:     PersonData{Name: "Pessoa Única", PhotoURL: DefaultPhotoURL, Role: "Indivíduo", CPF: "000.000.000-00"},
				}},
				Edges: []Relationship{},
			},
		},
	}
}

func sampleNodes(prefix string) []Person {
	photo := func(seed string) string {
		return fmt.Sprintf("https://picsum.photos/seed/%s%s/80/80", prefix, seed)
	}
	return []Person{
		{
			ID: prefix + "-1", Type: NodeTypePerson, Position: Position{X: 250, Y: 50},
			Data: PersonData{Name: "Carlos Silva", PhotoURL: photo("CS"), Role: "Principal Alvo", CPF: "111.222.333-44"},
		},
		{
			ID: prefix + "-2", Type: NodeTypePerson, Position: Position{X: 100, Y: 200},
			Data: PersonData{Name: "Ana Pereira", PhotoURL: photo("AP"), Role: "Sócia", CPF: "222.333.444-55"},
		},
		{
			ID: prefix + "-3", Type: NodeTypePerson, Position: Position{X: 400, Y: 200},
			Data: PersonData{Name: "João Santos", PhotoURL: photo("JS"), Role: "Consultor Externo"},
		},
	}
}

func sampleEdges(prefix string) []Relationship {
	return []Relationship{
		{
			ID: "e-" + prefix + "-1-2", Source: prefix + "-1", Target: prefix + "-2",
			Label: "Societário", Data: RelationshipData{Type: "societario", Strength: StrengthStrong},
		},
		{
			ID: "e-" + prefix + "-1-3", Source: prefix + "-1", Target: prefix + "-3",
			Label: "Profissional", Data: RelationshipData{Type: "profissional", Strength: StrengthMedium},
		},
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
