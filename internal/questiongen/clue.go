package questiongen

import (
	"fmt"
	"strings"

	"periodic-quiz/internal/domain"
)

const genericClue = "Try eliminating clearly wrong choices to increase your odds."

// Clue returns a short textual hint for q. It never fails: when the catalog has
// nothing useful about the question a generic hint comes back.
func Clue(q domain.Question, c domain.Catalog) string {
	item, hasItem := domain.KnowledgeItem{}, false
	if q.SourceKey > 0 {
		item, hasItem = c.ItemByKey(q.SourceKey)
	}

	switch q.Type {
	case domain.TypeInertNote:
		return "Noble gases sit in the last column of the table."
	case domain.TypeSymbolToName:
		if hasItem {
			return fmt.Sprintf("The name starts with %q and it is classified as %s.", initial(item.Name), category(item))
		}
	case domain.TypeNameToSymbol:
		if hasItem {
			if len(item.Code) > 1 {
				return fmt.Sprintf("The chemical symbol starts with %q and the second letter is %q.", item.Code[:1], item.Code[1:2])
			}
			return fmt.Sprintf("The chemical symbol starts with %q.", item.Code[:1])
		}
	case domain.TypeNumberToName, domain.TypeNameToNumber:
		if hasItem {
			where := fmt.Sprintf("This element is in period %d", item.Period)
			if item.Group > 0 {
				where += fmt.Sprintf(", group %d", item.Group)
			}
			return fmt.Sprintf("%s. It is %s; that may help narrow choices.", where, category(item))
		}
		return "Atomic numbers increase left-to-right across the periodic table; consider position."
	case domain.TypeUseToName:
		if hasItem && len(item.Uses) > 0 {
			return firstSentence(item.Uses[0])
		}
		return "Think about which elements are common in that application."
	case domain.TypeFormulaToName, domain.TypeNameToFormula, domain.TypeMultiFormulaToName:
		if codes := formulaCodes(q.Formula); len(codes) > 0 {
			return fmt.Sprintf("Contains element: %s. Consider its common valence.", codes[0])
		}
		if hasItem {
			return fmt.Sprintf("This compound involves %s (%s).", item.Name, item.Code)
		}
		return "Consider common ions and valences for the elements in the formula."
	case domain.TypeConfiguration:
		if hasItem && item.Configuration != "" {
			parts := strings.Fields(item.Configuration)
			return fmt.Sprintf("The configuration ends with %s; that indicates the valence shell.", parts[len(parts)-1])
		}
		return "Look at the outer shell electrons to identify the element."
	case domain.TypeOxidation:
		if hasItem {
			if ox := item.PrimaryOxidation(); ox != "" {
				return fmt.Sprintf("A common oxidation state is %s. It is %s.", ox, category(item))
			}
		}
	}
	if hasItem {
		return fmt.Sprintf("Think about %s; the name starts with %q.", category(item), initial(item.Name))
	}
	return genericClue
}

func initial(s string) string {
	if s == "" {
		return ""
	}
	return s[:1]
}

func category(it domain.KnowledgeItem) string {
	if it.Category == "" {
		return "an element"
	}
	return strings.ReplaceAll(it.Category, "-", " ")
}

func firstSentence(s string) string {
	if i := strings.Index(s, "."); i > 0 {
		return s[:i]
	}
	return s
}

// formulaCodes lists the element codes of an ASCII formula in order of appearance.
func formulaCodes(formula string) []string {
	var out []string
	for i := 0; i < len(formula); i++ {
		ch := formula[i]
		if ch < 'A' || ch > 'Z' {
			continue
		}
		code := string(ch)
		if i+1 < len(formula) && formula[i+1] >= 'a' && formula[i+1] <= 'z' {
			code += string(formula[i+1])
		}
		out = append(out, code)
	}
	return out
}
