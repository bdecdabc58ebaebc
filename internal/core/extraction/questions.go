package extraction

// Questions is the fixed set asked of every loan during bulk extraction.
var Questions = []string{
	"What is the use of proceeds?",
	"List the KPIs and their baseline values.",
	"Is there a management of proceeds description?",
	"What is the SPT target and the target year?",
	"Does the report specify external review or verification procedures?",
	"What are the Scope 1, 2, and 3 emissions?",
	"What environmental certifications does the project have?",
}

// ClaimTypes maps each bulk question to the claim type it produces.
var ClaimTypes = map[string]string{
	Questions[0]: "use_of_proceeds",
	Questions[1]: "kpi_baseline",
	Questions[2]: "management_of_proceeds",
	Questions[3]: "spt_target",
	Questions[4]: "external_review",
	Questions[5]: "emissions",
	Questions[6]: "certifications",
}
