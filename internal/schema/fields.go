package schema

import "sheetcurator/pkg/domain"

// Permissible value sets, distilled from the HCA core schema enumerations.
// Enum membership is checked on the value's display rendering, so integer
// codes such as manner_of_death "1" compare correctly.
var (
	referenceGenomes = []string{
		"GRCh37", "GRCh38", "GRCm37", "GRCm38", "GRCm39", "not applicable",
	}
	sequencedFragments = []string{
		"3 prime tag", "5 prime tag", "full length", "not applicable", "probe-based",
	}
	yesNo = []string{"no", "yes"}

	organisms = []string{"NCBITaxon:9606", "NCBITaxon:10090"}

	mannersOfDeath = []string{"1", "2", "3", "4", "0", "unknown", "not applicable"}

	developmentStages = []string{
		"HsapDv:0000003", "HsapDv:0000046", "HsapDv:0000264", "HsapDv:0000268",
		"HsapDv:0000237", "HsapDv:0000238", "HsapDv:0000239", "HsapDv:0000240",
		"HsapDv:0000241", "HsapDv:0000242", "HsapDv:0000243",
		"MmusDv:0000001", "MmusDv:0000002", "unknown",
	}

	// Space-separated forms so the table-driven fixes converge on a valid
	// value in a single repair pass.
	sampleSources = []string{
		"surgical donor", "postmortem donor", "living organ donor",
	}
	sampleCollectionMethods = []string{
		"brush", "scraping", "biopsy", "surgical resection", "blood draw",
		"body fluid", "other",
	}
	samplePreservationMethods = []string{
		"ambient temperature", "cut slide", "fresh",
		"frozen at -70C", "frozen at -80C", "frozen at -150C",
		"frozen in liquid nitrogen", "frozen in vapor phase",
		"paraffin block", "RNAlater at 4C", "RNAlater at 25C",
		"RNAlater at -20C", "other",
	}
	sampledSiteConditions = []string{"healthy", "diseased", "adjacent"}
	tissueTypes           = []string{"tissue", "organoid", "cell culture"}
	suspensionTypes       = []string{"cell", "nucleus", "na"}

	radialTissueTerms = []string{
		"EPI", "LP", "MUSC", "EPI_LP", "LP_MUSC", "EPI_LP_MUSC",
		"MLN", "SUB", "Peyers patch", "Mucosal ILF", "Submucosal ILF", "WM",
	}
)

func req(name string) domain.FieldDef {
	return domain.FieldDef{Name: name, Required: true, Attribute: true}
}

func opt(name string) domain.FieldDef {
	return domain.FieldDef{Name: name, Attribute: true}
}

func enum(f domain.FieldDef, values []string) domain.FieldDef {
	f.Permissible = values
	return f
}

func multi(f domain.FieldDef) domain.FieldDef {
	f.Multivalued = true
	return f
}

func id(name string) domain.FieldDef {
	f := req(name)
	f.Identifier = true
	return f
}

func integer(f domain.FieldDef) domain.FieldDef {
	f.Range = domain.RangeInteger
	return f
}

func decimal(f domain.FieldDef) domain.FieldDef {
	f.Range = domain.RangeDecimal
	return f
}

var datasetFields = []domain.FieldDef{
	id("dataset_id"),
	req("alignment_software"),
	req("assay_ontology_term_id"),
	opt("assay_ontology_term"),
	multi(opt("batch_condition")),
	opt("comments"),
	opt("consortia"),
	req("contact_email"),
	opt("default_embedding"),
	req("description"),
	req("gene_annotation_version"),
	enum(opt("intron_inclusion"), yesNo),
	opt("protocol_url"),
	opt("publication_doi"),
	enum(req("reference_genome"), referenceGenomes),
	enum(req("sequenced_fragment"), sequencedFragments),
	opt("sequencing_platform"),
	multi(req("study_pi")),
	opt("title"),
}

var donorFields = []domain.FieldDef{
	id("donor_id"),
	req("dataset_id"),
	enum(req("organism_ontology_term_id"), organisms),
	req("sex_ontology_term_id"),
	opt("sex_ontology_term"),
	enum(req("manner_of_death"), mannersOfDeath),
}

var sampleFields = []domain.FieldDef{
	id("sample_id"),
	req("donor_id"),
	req("dataset_id"),
	opt("author_batch_notes"),
	opt("age_range"),
	req("cell_enrichment"),
	integer(opt("cell_number_loaded")),
	decimal(opt("cell_viability_percentage")),
	enum(req("development_stage_ontology_term_id"), developmentStages),
	req("disease_ontology_term_id"),
	opt("disease_ontology_term"),
	req("institute"),
	opt("is_primary_data"),
	req("library_id"),
	opt("library_id_repository"),
	req("library_preparation_batch"),
	req("library_sequencing_run"),
	enum(req("sample_collection_method"), sampleCollectionMethods),
	opt("sample_collection_year"),
	opt("sample_collection_site"),
	opt("sample_collection_relative_time_point"),
	enum(req("sample_preservation_method"), samplePreservationMethods),
	enum(req("sample_source"), sampleSources),
	enum(req("sampled_site_condition"), sampledSiteConditions),
	enum(req("suspension_type"), suspensionTypes),
	opt("tissue_free_text"),
	opt("tissue_ontology_term"),
	req("tissue_ontology_term_id"),
	enum(req("tissue_type"), tissueTypes),
}

func extend(base []domain.FieldDef, extra ...domain.FieldDef) []domain.FieldDef {
	out := make([]domain.FieldDef, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

var fieldTable = map[domain.SchemaClassID][]domain.FieldDef{
	ClassDataset: datasetFields,
	ClassAdiposeDataset: extend(datasetFields,
		req("ambient_count_correction"),
		req("doublet_detection"),
	),
	ClassGutDataset: extend(datasetFields,
		req("ambient_count_correction"),
		req("doublet_detection"),
	),
	ClassMusculoskeletalDataset: datasetFields,
	ClassDonor:                  donorFields,
	ClassSample:                 sampleFields,
	ClassAdiposeSample: extend(sampleFields,
		req("dissociation_protocol"),
	),
	ClassGutSample: extend(sampleFields,
		req("dissociation_protocol"),
		enum(req("radial_tissue_term"), radialTissueTerms),
	),
}
