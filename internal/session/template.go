package session

import (
	"fmt"

	"github.com/hirelens/assessment-backend/internal/model"
)

// Template returns the starter code shown for a question the candidate has
// not touched yet. The question's function-name hint is spliced in when
// present; "solution" otherwise.
func Template(lang model.Language, functionName string) string {
	fn := functionName
	if fn == "" {
		fn = "solution"
	}

	switch lang {
	case model.LanguageJavaScript:
		return fmt.Sprintf("function %s() {\n    // Write your solution here\n}\n", fn)
	case model.LanguageJava:
		return fmt.Sprintf("class Solution {\n    public Object %s() {\n        // Write your solution here\n        return null;\n    }\n}\n", fn)
	case model.LanguageCPP:
		return fmt.Sprintf("#include <bits/stdc++.h>\nusing namespace std;\n\nauto %s() {\n    // Write your solution here\n}\n", fn)
	case model.LanguageC:
		return fmt.Sprintf("#include <stdio.h>\n\nvoid %s() {\n    /* Write your solution here */\n}\n", fn)
	default:
		// python is the fallback for anything unrecognized
		return fmt.Sprintf("def %s():\n    # Write your solution here\n    pass\n", fn)
	}
}
