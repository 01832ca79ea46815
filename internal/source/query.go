package source

// ActivityQuery is the extraction query shared by the relational providers.
// It joins activities to parent structures, assays, targets and the protein
// family classification, applying all row-level filters up front so every row
// it returns is a usable ActivityRecord. Classification columns are nullable:
// a target without a family path yields NULLs, not a dropped row.
const ActivityQuery = `
SELECT
    CAST(act.doc_id AS TEXT) AS doc_id,
    act.standard_value,
    mh.parent_molregno,
    md.chembl_id,
    cs.canonical_smiles,
    td.tid,
    td.chembl_id,
    pfc.l1,
    pfc.l2,
    pfc.l3
FROM activities act
JOIN molecule_hierarchy mh ON act.molregno = mh.molregno
JOIN molecule_dictionary md ON mh.parent_molregno = md.molregno
JOIN compound_structures cs ON mh.parent_molregno = cs.molregno
JOIN assays ass ON act.assay_id = ass.assay_id
JOIN target_dictionary td ON ass.tid = td.tid
LEFT JOIN target_components tc ON td.tid = tc.tid
LEFT JOIN component_class cc ON tc.component_id = cc.component_id
LEFT JOIN protein_family_classification pfc ON cc.protein_class_id = pfc.protein_class_id
WHERE act.standard_units = 'nM'
  AND act.standard_type IN ('EC50', 'IC50', 'Ki', 'Kd', 'XC50', 'AC50', 'Potency')
  AND act.standard_value IS NOT NULL
  AND act.data_validity_comment IS NULL
  AND act.standard_relation IN ('=', '<')
  AND act.potential_duplicate = 0
  AND ass.confidence_score >= 8
  AND td.target_type = 'SINGLE PROTEIN'`
