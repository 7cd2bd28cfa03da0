package mysql

// position preserves the source file's row order; it is the tie-breaker
// for every sort and the positional lookup handle.
const listSuppliersSQL = `
SELECT keyword, company, company_url, product_name, product_url,
       price_per_kg, rating, phone, address, city
FROM suppliers
ORDER BY position, id
`

const countSuppliersSQL = `SELECT COUNT(*) FROM suppliers`
