// Package mensalidade calcula a situação da mensalidade de um cliente a partir
// do histórico de pagamentos.
//
// O dia de vencimento fica fixo desde o primeiro pagamento do cliente. Cada
// pagamento cobre o mês em que caiu até esse dia do mês seguinte, tenha sido
// feito antes ou depois do vencimento daquele mês. Quando o dia não existe no
// mês de destino (31 em fevereiro, por exemplo) usa-se o último dia do mês.
//
// A situação nunca é persistida: é recalculada a cada leitura e depende apenas
// das datas de pagamento e da data de hoje.
package mensalidade
